package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/media/models"
	"social-hub-backend/internal/features/media/service"
)

type MediaHandler struct {
	service service.MediaService
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewMediaHandler(service service.MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		service: service,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

func (h *MediaHandler) RegisterRoutes(router *gin.RouterGroup) {
	uploads := router.Group("/media/uploads")
	{
		uploads.POST("", h.wrap(h.requestUpload))
		uploads.POST("/confirm", h.wrap(h.confirmUpload))
	}
}

// @Summary Request presigned upload
// @Description Returns a presigned PUT URL; the client must send the returned headers unchanged
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.UploadRequest true "Upload"
// @Success 201 {object} models.UploadTicket
// @Failure 400 {object} middleware.ErrorResponse
// @Router /media/uploads [post]
func (h *MediaHandler) requestUpload(c *gin.Context) {
	var req models.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	ticket, err := h.service.RequestUpload(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// @Summary Confirm upload
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ConfirmRequest true "Uploaded object"
// @Success 200 {object} models.Photo
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /media/uploads/confirm [post]
func (h *MediaHandler) confirmUpload(c *gin.Context) {
	var req models.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	photo, err := h.service.ConfirmUpload(c.Request.Context(), middleware.GetUserID(c), req.Key)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, photo)
}
