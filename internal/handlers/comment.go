package handlers

import (
	"net/http"

	"capoff/internal/apperr"
	"capoff/internal/middleware"
	"capoff/internal/services"
	"capoff/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
	cache    *utils.PageCache
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		cache:    utils.GetCache(),
	}
}

type addCommentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, apperr.Wrap(apperr.KindInvalidContent, "invalid request body", err))
		return
	}

	comment, err := h.comments.AddComment(middleware.CurrentIdentity(c), c.Param("aid"), req.Content)
	if err != nil {
		JSONError(c, err)
		return
	}

	h.cache.DeletePrefix(cachePrefix)
	c.JSON(http.StatusCreated, comment)
}
