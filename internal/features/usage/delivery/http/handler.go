package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/usage/service"
)

type UsageHandler struct {
	service service.UsageService
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewUsageHandler(service service.UsageService, logger *zap.Logger) *UsageHandler {
	return &UsageHandler{
		service: service,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

func (h *UsageHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/usage", h.wrap(h.report))
}

// @Summary Resource usage report
// @Description Daily aggregates from resource_usage, newest first (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param days query int false "Number of days (default 7, max 90)"
// @Success 200 {object} models.Report
// @Failure 403 {object} middleware.ErrorResponse
// @Router /admin/usage [get]
func (h *UsageHandler) report(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = c.Error(errors.NewValidationError("days", "must be a positive integer"))
			return
		}
		days = n
	}

	report, err := h.service.Report(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}
