package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/features/post/models"
	"social-hub-backend/internal/features/post/service"
)

type PostHandler struct {
	service service.PostService
	pages   *pagination.Resolver
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewPostHandler(service service.PostService, pages *pagination.Resolver, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		pages:   pages,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

func (h *PostHandler) RegisterRoutes(router *gin.RouterGroup) {
	posts := router.Group("/posts")
	{
		posts.GET("/feed", h.wrap(h.feed))
		posts.POST("", h.wrap(h.create))
		posts.POST("/duplicate-check", h.wrap(h.checkDuplicate))
		posts.GET("/settings", h.wrap(h.getSettings))
		posts.PUT("/settings", h.wrap(h.updateSettings))
		posts.DELETE("/:id", h.wrap(h.delete))
	}
}

// @Summary Public feed
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} pagination.Result[models.Post]
// @Router /posts/feed [get]
func (h *PostHandler) feed(c *gin.Context) {
	page := h.pages.PageFor(c.Request.Context(), middleware.GetUserID(c), c.Query("page"), c.Query("page_size"))

	result, err := h.service.ListFeed(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Create post
// @Description Rejects content too similar to the author's recent posts with 409 DUPLICATE_POST unless force=true
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body models.CreateRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 409 {object} middleware.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) create(c *gin.Context) {
	var req models.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// @Summary Check for duplicate post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.DuplicateCheckRequest true "Draft content"
// @Success 200 {object} models.DuplicateResult
// @Router /posts/duplicate-check [post]
func (h *PostHandler) checkDuplicate(c *gin.Context) {
	var req models.DuplicateCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.CheckDuplicate(c.Request.Context(), middleware.GetUserID(c), req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Delete own post
// @Tags posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) delete(c *gin.Context) {
	postID := c.Param("id")
	if _, err := uuid.Parse(postID); err != nil {
		_ = c.Error(errors.NewValidationError("id", "must be a UUID"))
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), middleware.GetUserID(c), postID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Post settings
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Settings
// @Router /posts/settings [get]
func (h *PostHandler) getSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// @Summary Update post settings
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param settings body models.UpdateSettingsRequest true "Changed fields"
// @Success 200 {object} models.Settings
// @Router /posts/settings [put]
func (h *PostHandler) updateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
