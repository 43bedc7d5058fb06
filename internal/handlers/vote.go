package handlers

import (
	"net/http"

	"capoff/internal/apperr"
	"capoff/internal/middleware"
	"capoff/internal/services"
	"capoff/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
	cache *utils.PageCache
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{
		votes: votes,
		cache: utils.GetCache(),
	}
}

type castVoteRequest struct {
	Value int `json:"value"`
}

// Cast applies one toggle transition and returns the fresh aggregate so
// the client can repaint the buttons without refetching the list.
func (h *VoteHandler) Cast(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, apperr.Wrap(apperr.KindInvalidContent, "invalid request body", err))
		return
	}

	state, err := h.votes.CastVote(middleware.CurrentIdentity(c), c.Param("aid"), req.Value)
	if err != nil {
		JSONError(c, err)
		return
	}

	h.cache.DeletePrefix(cachePrefix)
	c.JSON(http.StatusOK, state)
}
