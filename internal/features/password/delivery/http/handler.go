package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/password/models"
	"social-hub-backend/internal/features/password/service"
)

type PasswordHandler struct {
	service service.PasswordService
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewPasswordHandler(service service.PasswordService, logger *zap.Logger) *PasswordHandler {
	return &PasswordHandler{
		service: service,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

func (h *PasswordHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/password", h.wrap(h.change))
}

// @Summary Change password
// @Description Checks policy and known breaches, verifies the current password, then updates it. Limited to 5 attempts per 15 minutes.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ChangeRequest true "Passwords"
// @Success 200 {object} models.ChangeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Router /auth/password [post]
func (h *PasswordHandler) change(c *gin.Context) {
	var req models.ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), middleware.GetPrincipal(c), req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.ChangeResponse{Success: true, Message: "Password updated"})
}
