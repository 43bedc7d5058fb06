package handlers

import (
	"net/http"

	"capoff/internal/services"

	"github.com/gin-gonic/gin"
)

// UploadHandler fronts the video host: the client asks us for a direct
// upload slot, PUTs the file straight to the host, then polls the status
// endpoint until a playback reference appears.
type UploadHandler struct {
	video *services.VideoService
}

func NewUploadHandler(video *services.VideoService) *UploadHandler {
	return &UploadHandler{video: video}
}

func (h *UploadHandler) Create(c *gin.Context) {
	upload, err := h.video.CreateDirectUpload(c.Request.Context())
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusCreated, upload)
}

func (h *UploadHandler) Status(c *gin.Context) {
	status, err := h.video.GetUploadStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
