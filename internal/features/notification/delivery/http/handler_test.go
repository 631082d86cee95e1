package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/features/notification/models"
	securitymodels "social-hub-backend/internal/features/security/models"
)

type stubService struct {
	created *models.CreateRequest
	source  string
	read    []int64
}

func (s *stubService) Create(ctx context.Context, req models.CreateRequest, source string) (*models.Notification, error) {
	s.created = &req
	s.source = source
	return &models.Notification{ID: 1, Title: req.Title, Message: req.Message, Source: source}, nil
}

func (s *stubService) List(ctx context.Context, page pagination.Page) (*models.ListResponse, error) {
	return &models.ListResponse{Items: []*models.Notification{}, Page: page.Number, PageSize: page.Size}, nil
}

func (s *stubService) MarkRead(ctx context.Context, id int64) error {
	if id == 404 {
		return errors.NewNotFoundError("notification", id)
	}
	s.read = append(s.read, id)
	return nil
}

func (s *stubService) UnreadCount(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubService) NotifyAdmins(ctx context.Context, title, message string, severity securitymodels.Severity, source string) error {
	return nil
}

func newRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		middleware.SetPrincipal(c, &auth.Principal{UserID: "admin-1", IsAdmin: true})
		c.Next()
	})
	NewNotificationHandler(svc, pagination.NewResolver(nil, ""), zap.NewNop()).
		RegisterAdminRoutes(r.Group("/api/v1/admin"))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateNotification(t *testing.T) {
	svc := &stubService{}
	w := do(newRouter(svc), http.MethodPost, "/api/v1/admin/notifications", `{"title":"Maintenance","message":"Tonight","severity":"info"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "Maintenance", svc.created.Title)
	assert.Equal(t, "admin:admin-1", svc.source)
}

func TestCreateNotificationValidates(t *testing.T) {
	svc := &stubService{}
	w := do(newRouter(svc), http.MethodPost, "/api/v1/admin/notifications", `{"title":"x","message":"y","severity":"loud"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.created)
}

func TestMarkRead(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/api/v1/admin/notifications/7/read", "").Code)
	assert.Equal(t, []int64{7}, svc.read)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/admin/notifications/abc/read", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/v1/admin/notifications/404/read", "").Code)
}
