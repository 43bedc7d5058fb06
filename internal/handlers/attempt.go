package handlers

import (
	"net/http"
	"time"

	"capoff/internal/middleware"
	"capoff/internal/services"
	"capoff/internal/utils"

	"github.com/gin-gonic/gin"
)

// Cache TTLs for read endpoints. Only anonymous responses are cached: the
// viewer's own vote is private and must never be served from a shared
// entry. Every successful write drops the whole "attempts:" prefix.
const (
	listCacheTTL   = 1 * time.Minute
	detailCacheTTL = 5 * time.Minute
	statsCacheTTL  = 5 * time.Minute
)

const cachePrefix = "attempts:"

type AttemptHandler struct {
	attempts *services.AttemptService
	cache    *utils.PageCache
}

func NewAttemptHandler(attempts *services.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		cache:    utils.GetCache(),
	}
}

type createAttemptRequest struct {
	VideoRef      string `json:"video_ref" validate:"required_without=UploadID"`
	UploadID      string `json:"upload_id"`
	ToolUsed      string `json:"tool_used" validate:"required"`
	BeverageBrand string `json:"beverage_brand" validate:"required"`
	Description   string `json:"description" validate:"omitempty,max=2000"`
}

func (h *AttemptHandler) Create(c *gin.Context) {
	var req createAttemptRequest
	if err := bindAndValidate(c, &req); err != nil {
		JSONError(c, err)
		return
	}

	attempt, err := h.attempts.Create(c.Request.Context(), middleware.CurrentIdentity(c), services.CreateAttemptInput{
		VideoRef:      req.VideoRef,
		UploadID:      req.UploadID,
		ToolUsed:      req.ToolUsed,
		BeverageBrand: req.BeverageBrand,
		Description:   req.Description,
	})
	if err != nil {
		JSONError(c, err)
		return
	}

	h.cache.DeletePrefix(cachePrefix)
	c.JSON(http.StatusCreated, attempt)
}

func (h *AttemptHandler) Delete(c *gin.Context) {
	if err := h.attempts.Delete(middleware.CurrentIdentity(c), c.Param("aid")); err != nil {
		JSONError(c, err)
		return
	}

	h.cache.DeletePrefix(cachePrefix)
	c.Status(http.StatusNoContent)
}

func (h *AttemptHandler) List(c *gin.Context) {
	tool := c.Query("tool")
	viewerID := ""
	if ident := middleware.CurrentIdentity(c); ident != nil {
		viewerID = ident.ID
	}

	cacheKey := cachePrefix + "list:" + tool
	if viewerID == "" {
		if cached := h.cache.Get(cacheKey); cached != nil {
			if rows, ok := cached.([]services.AttemptSummary); ok {
				c.JSON(http.StatusOK, gin.H{"attempts": rows})
				return
			}
		}
	}

	rows, err := h.attempts.List(viewerID, tool)
	if err != nil {
		JSONError(c, err)
		return
	}

	if viewerID == "" {
		h.cache.Set(cacheKey, rows, listCacheTTL)
	}
	c.JSON(http.StatusOK, gin.H{"attempts": rows})
}

func (h *AttemptHandler) Detail(c *gin.Context) {
	aid := c.Param("aid")
	viewerID := ""
	if ident := middleware.CurrentIdentity(c); ident != nil {
		viewerID = ident.ID
	}

	cacheKey := cachePrefix + "detail:" + aid
	if viewerID == "" {
		if cached := h.cache.Get(cacheKey); cached != nil {
			if detail, ok := cached.(*services.AttemptDetail); ok {
				c.JSON(http.StatusOK, detail)
				return
			}
		}
	}

	detail, err := h.attempts.Detail(viewerID, aid)
	if err != nil {
		JSONError(c, err)
		return
	}

	if viewerID == "" {
		h.cache.Set(cacheKey, detail, detailCacheTTL)
	}
	c.JSON(http.StatusOK, detail)
}

func (h *AttemptHandler) Tools(c *gin.Context) {
	cacheKey := cachePrefix + "tools"
	if cached := h.cache.Get(cacheKey); cached != nil {
		if stats, ok := cached.(*services.ToolStats); ok {
			c.JSON(http.StatusOK, stats)
			return
		}
	}

	stats, err := h.attempts.ToolStats()
	if err != nil {
		JSONError(c, err)
		return
	}

	h.cache.Set(cacheKey, stats, statsCacheTTL)
	c.JSON(http.StatusOK, stats)
}

func (h *AttemptHandler) Suggestions(c *gin.Context) {
	cacheKey := cachePrefix + "suggestions"
	if cached := h.cache.Get(cacheKey); cached != nil {
		if sugg, ok := cached.(*services.Suggestions); ok {
			c.JSON(http.StatusOK, sugg)
			return
		}
	}

	sugg, err := h.attempts.Suggestions()
	if err != nil {
		JSONError(c, err)
		return
	}

	h.cache.Set(cacheKey, sugg, statsCacheTTL)
	c.JSON(http.StatusOK, sugg)
}
