package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/features/security/models"
	"social-hub-backend/internal/features/security/service"
)

type SecurityHandler struct {
	service service.SecurityService
	pages   *pagination.Resolver
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewSecurityHandler(service service.SecurityService, pages *pagination.Resolver, logger *zap.Logger) *SecurityHandler {
	return &SecurityHandler{
		service: service,
		pages:   pages,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

// RegisterAdminRoutes ожидает группу, уже закрытую RequireAdmin
func (h *SecurityHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/security-events", h.wrap(h.list))
}

// @Summary List security events
// @Description Paginated security audit log, newest first (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Filter by user"
// @Param type query string false "Filter by event type"
// @Param severity query string false "Filter by severity" Enums(info, warning, critical)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} pagination.Result[models.Event]
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /admin/security-events [get]
func (h *SecurityHandler) list(c *gin.Context) {
	filter := models.Filter{
		UserID:    c.Query("user_id"),
		EventType: c.Query("type"),
		Severity:  models.Severity(c.Query("severity")),
	}
	switch filter.Severity {
	case "", models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
	default:
		_ = c.Error(errors.NewValidationError("severity", "must be one of: info warning critical"))
		return
	}

	page := h.pages.PageFor(c.Request.Context(), middleware.GetUserID(c), c.Query("page"), c.Query("page_size"))

	result, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
