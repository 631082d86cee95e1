package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/features/notification/models"
	"social-hub-backend/internal/features/notification/service"
)

type NotificationHandler struct {
	service service.NotificationService
	pages   *pagination.Resolver
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewNotificationHandler(service service.NotificationService, pages *pagination.Resolver, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		pages:   pages,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

func (h *NotificationHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	notifications := admin.Group("/notifications")
	{
		notifications.GET("", h.wrap(h.list))
		notifications.POST("", h.wrap(h.create))
		notifications.POST("/:id/read", h.wrap(h.markRead))
	}
}

// @Summary List admin notifications
// @Description Unread notifications first, then newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} models.ListResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /admin/notifications [get]
func (h *NotificationHandler) list(c *gin.Context) {
	page := h.pages.PageFor(c.Request.Context(), middleware.GetUserID(c), c.Query("page"), c.Query("page_size"))

	res, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary Create admin notification
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notification body models.CreateRequest true "Notification"
// @Success 201 {object} models.Notification
// @Failure 400 {object} middleware.ErrorResponse
// @Router /admin/notifications [post]
func (h *NotificationHandler) create(c *gin.Context) {
	var req models.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	n, err := h.service.Create(c.Request.Context(), req, "admin:"+middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, n)
}

// @Summary Mark notification read
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/notifications/{id}/read [post]
func (h *NotificationHandler) markRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		_ = c.Error(errors.NewValidationError("id", "must be a positive integer"))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
