package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/i18n/service"
)

type TranslationHandler struct {
	service service.TranslationService
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewTranslationHandler(service service.TranslationService, logger *zap.Logger) *TranslationHandler {
	return &TranslationHandler{
		service: service,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

// RegisterRoutes: публичный маршрут, без авторизации
func (h *TranslationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/i18n/:lang", h.wrap(h.get))
}

func (h *TranslationHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/i18n/reload", h.wrap(h.reload))
}

// @Summary Translations
// @Description Key/value bundle for a language; unsupported languages fall back to en
// @Tags i18n
// @Produce json
// @Param lang path string true "Language code" example(es)
// @Success 200 {object} service.Bundle
// @Router /i18n/{lang} [get]
func (h *TranslationHandler) get(c *gin.Context) {
	bundle, err := h.service.Get(c.Request.Context(), c.Param("lang"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, bundle)
}

// @Summary Reload translations
// @Description Drops cached bundles so edits to the translations table are served immediately
// @Tags admin
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Router /admin/i18n/reload [post]
func (h *TranslationHandler) reload(c *gin.Context) {
	if err := h.service.Reload(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
