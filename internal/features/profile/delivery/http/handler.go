package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/features/profile/models"
	"social-hub-backend/internal/features/profile/service"
)

type ProfileHandler struct {
	service service.ProfileService
	pages   *pagination.Resolver
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewProfileHandler(service service.ProfileService, pages *pagination.Resolver, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		pages:   pages,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/profiles")
	{
		profiles.POST("/register", h.wrap(h.register))
		profiles.GET("/me", h.wrap(h.getMe))
		profiles.PUT("/me", h.wrap(h.updateMe))
		profiles.PUT("/me/language", h.wrap(h.updateLanguage))
		profiles.PUT("/me/preferences", h.wrap(h.updatePreferences))
		profiles.GET("/:id", h.wrap(h.getProfile))
	}
}

// RegisterAdminRoutes ожидает группу, уже закрытую RequireAdmin
func (h *ProfileHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/users", h.wrap(h.list))
}

// @Summary Register profile
// @Description Creates the profile of a freshly signed-up user. Phone numbers are normalized to E.164.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.RegisterRequest true "Profile"
// @Success 201 {object} models.Profile
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /profiles/register [post]
func (h *ProfileHandler) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	profile, err := h.service.Register(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// @Summary Current profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} middleware.ErrorResponse
// @Router /profiles/me [get]
func (h *ProfileHandler) getMe(c *gin.Context) {
	profile, err := h.service.GetMe(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Update current profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.UpdateRequest true "Changed fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /profiles/me [put]
func (h *ProfileHandler) updateMe(c *gin.Context) {
	var req models.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	profile, err := h.service.UpdateMe(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Update interface language
// @Tags profiles
// @Accept json
// @Security BearerAuth
// @Param body body models.LanguageRequest true "Language"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Router /profiles/me/language [put]
func (h *ProfileHandler) updateLanguage(c *gin.Context) {
	var req models.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.UpdateLanguage(c.Request.Context(), middleware.GetUserID(c), req.Language); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Save page size preference
// @Description Stored value is clamped to [1, 100]
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.PreferencesRequest true "Preferences"
// @Success 200 {object} models.PreferencesResponse
// @Router /profiles/me/preferences [put]
func (h *ProfileHandler) updatePreferences(c *gin.Context) {
	var req models.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	size, err := h.service.SetPageSizePreference(c.Request.Context(), middleware.GetUserID(c), req.PageSize)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.PreferencesResponse{PageSize: size})
}

// @Summary Public profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} middleware.ErrorResponse
// @Router /profiles/{id} [get]
func (h *ProfileHandler) getProfile(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = c.Error(errors.NewValidationError("id", "must be a UUID"))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary List profiles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} pagination.Result[models.Profile]
// @Failure 403 {object} middleware.ErrorResponse
// @Router /admin/users [get]
func (h *ProfileHandler) list(c *gin.Context) {
	page := h.pages.PageFor(c.Request.Context(), middleware.GetUserID(c), c.Query("page"), c.Query("page_size"))

	result, err := h.service.ListProfiles(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
