package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/session/models"
	"social-hub-backend/internal/features/session/service"
)

type SessionHandler struct {
	service service.SessionService
	logger  *zap.Logger
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewSessionHandler(service service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.GET("", h.wrap(h.listDevices))
		sessions.POST("/logout-others", h.wrap(h.logoutOthers))
		sessions.POST("/:id/trust", h.wrap(h.toggleTrust))
		sessions.DELETE("/:id", h.wrap(h.removeDevice))
	}
}

// @Summary List active devices
// @Description Active sessions of the current user, most recently active first; the calling device is flagged is_current
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string false "Device ID"
// @Success 200 {object} models.DevicesResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /sessions [get]
func (h *SessionHandler) listDevices(c *gin.Context) {
	resp, err := h.service.RefreshDevices(c.Request.Context(), middleware.GetUserID(c), middleware.GetClientDeviceID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Toggle device trust
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} models.TrustResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/trust [post]
func (h *SessionHandler) toggleTrust(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	resp, err := h.service.ToggleDeviceTrust(c.Request.Context(), middleware.GetUserID(c), sessionID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Remove device
// @Description Signs another device out; the current device must use regular sign out
// @Tags sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) removeDevice(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	if err := h.service.RemoveDevice(c.Request.Context(), middleware.GetUserID(c), sessionID, middleware.GetClientDeviceID(c)); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Sign out all other devices
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device ID"
// @Success 200 {object} models.LogoutOthersResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /sessions/logout-others [post]
func (h *SessionHandler) logoutOthers(c *gin.Context) {
	// Без X-Device-ID текущее устройство неизвестно: выйти пришлось бы везде
	deviceID := middleware.GetClientDeviceID(c)
	if deviceID == "" {
		_ = c.Error(errors.NewValidationError("X-Device-ID", "is required to keep the current device signed in"))
		return
	}

	n, err := h.service.LogoutAllOtherDevices(c.Request.Context(), middleware.GetUserID(c), deviceID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.LogoutOthersResponse{LoggedOut: n})
}

func sessionParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = c.Error(errors.NewValidationError("id", "must be a UUID"))
		return "", false
	}
	return id, true
}
