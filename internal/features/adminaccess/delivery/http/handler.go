package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/adminaccess/models"
	"social-hub-backend/internal/features/adminaccess/service"
)

// SessionActivator переоткрывает сессию устройства при SIGNED_IN
type SessionActivator interface {
	Activate(ctx context.Context, userID, deviceID, userAgent, ip string) error
}

type AccessHandler struct {
	service  service.AccessService
	sessions SessionActivator
	logger   *zap.Logger
	wrap     func(gin.HandlerFunc) gin.HandlerFunc
}

func NewAccessHandler(service service.AccessService, sessions SessionActivator, logger *zap.Logger) *AccessHandler {
	return &AccessHandler{
		service:  service,
		sessions: sessions,
		logger:   logger,
		wrap:     middleware.HandleErrorWrapper(logger),
	}
}

// RegisterRoutes: /admin/access доступен любому аутентифицированному
// пользователю, иначе клиент не узнает о запрете.
func (h *AccessHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/admin/access", h.wrap(h.getState))
}

// RegisterEventRoutes монтирует /admin/access/events. Группа не должна
// проверять отзыв сессии: SIGNED_IN как раз переоткрывает отозванное устройство.
func (h *AccessHandler) RegisterEventRoutes(router *gin.RouterGroup) {
	router.POST("/admin/access/events", h.wrap(h.handleEvent))
}

func (h *AccessHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/users/:id/grant-admin", h.wrap(h.grantAdmin))
}

// @Summary Admin access state
// @Description Validates admin access (with retries and auth-context fallback)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AccessState
// @Failure 401 {object} middleware.ErrorResponse
// @Router /admin/access [get]
func (h *AccessHandler) getState(c *gin.Context) {
	state, err := h.service.Validate(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// @Summary Report auth lifecycle event
// @Description SIGNED_IN, TOKEN_REFRESHED and NEW_ADMIN_GRANTED re-validate access; other events drop the cached state
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body models.AuthEvent true "Auth event"
// @Success 200 {object} models.EventResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /admin/access/events [post]
func (h *AccessHandler) handleEvent(c *gin.Context) {
	var event models.AuthEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		_ = c.Error(err)
		return
	}

	principal := middleware.GetPrincipal(c)
	// События принимаются только о себе
	event.UserID = principal.UserID
	event.IsAdmin = principal.IsAdmin
	if event.DeviceID == "" {
		event.DeviceID = middleware.GetDeviceID(c)
	}
	event.UserAgent = c.Request.UserAgent()
	event.IPAddress = c.ClientIP()

	if event.Type == models.EventSignedIn && h.sessions != nil && event.DeviceID != "" {
		if err := h.sessions.Activate(c.Request.Context(), event.UserID, event.DeviceID, event.UserAgent, event.IPAddress); err != nil {
			h.logger.Warn("Failed to activate device session on sign-in",
				zap.String("user_id", event.UserID),
				zap.String("device_id", event.DeviceID),
				zap.Error(err),
			)
		}
	}

	state, err := h.service.HandleAuthEvent(c.Request.Context(), event)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.EventResponse{Event: event.Type, State: state})
}

// @Summary Grant admin role
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/users/{id}/grant-admin [post]
func (h *AccessHandler) grantAdmin(c *gin.Context) {
	userID := c.Param("id")
	if _, err := uuid.Parse(userID); err != nil {
		_ = c.Error(errors.NewValidationError("id", "must be a UUID"))
		return
	}

	if err := h.service.GrantAdmin(c.Request.Context(), middleware.GetUserID(c), userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
