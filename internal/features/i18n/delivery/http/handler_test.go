package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/i18n/service"
)

type stubService struct {
	lang     string
	reloaded int
}

func (s *stubService) Reload(ctx context.Context) error {
	s.reloaded++
	return nil
}

func (s *stubService) Get(ctx context.Context, language string) (*service.Bundle, error) {
	s.lang = language
	return &service.Bundle{Language: "es", Translations: map[string]string{"greeting": "Hola"}}, nil
}

func TestGetTranslations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubService{}
	r := gin.New()
	r.Use(middleware.RequestID())
	NewTranslationHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/i18n/es", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "es", svc.lang)
	assert.NotEmpty(t, w.Header().Get("Cache-Control"))

	var body service.Bundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Hola", body.Translations["greeting"])
}

func TestReloadTranslations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubService{}
	r := gin.New()
	r.Use(middleware.RequestID())
	NewTranslationHandler(svc, zap.NewNop()).RegisterAdminRoutes(r.Group("/api/v1/admin"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/i18n/reload", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, svc.reloaded)
}
