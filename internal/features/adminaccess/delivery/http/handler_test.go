package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/adminaccess/models"
)

type stubService struct {
	state    *models.AccessState
	events   []models.AuthEvent
	granted  []string
	validate int
}

func (s *stubService) Validate(ctx context.Context, p *auth.Principal) (*models.AccessState, error) {
	s.validate++
	return s.state, nil
}

func (s *stubService) HandleAuthEvent(ctx context.Context, e models.AuthEvent) (*models.AccessState, error) {
	s.events = append(s.events, e)
	if e.Revalidates() {
		return s.state, nil
	}
	return nil, nil
}

func (s *stubService) GrantAdmin(ctx context.Context, actorID, userID string) error {
	s.granted = append(s.granted, userID)
	return nil
}

func (s *stubService) Invalidate(ctx context.Context, userID string) error { return nil }

type stubActivator struct {
	calls int
}

func (s *stubActivator) Activate(ctx context.Context, userID, deviceID, ua, ip string) error {
	s.calls++
	return nil
}

func newRouter(svc *stubService, act *stubActivator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	r := gin.New()
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		middleware.SetPrincipal(c, &auth.Principal{UserID: "u1"})
		c.Next()
	}, middleware.DeviceID(logger))

	h := NewAccessHandler(svc, act, logger)
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterEventRoutes(api)
	admin := api.Group("/admin", RequireAdmin(svc, logger))
	h.RegisterAdminRoutes(admin)
	return r
}

func TestRequireAdminDenied(t *testing.T) {
	svc := &stubService{state: &models.AccessState{State: models.StateDenied, Message: models.MessageDenied}}
	r := newRouter(svc, &stubActivator{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/3b241101-e2bb-4255-8caf-4136c566a962/grant-admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), models.MessageDenied)
	assert.Empty(t, svc.granted)
}

func TestGrantAdminAllowed(t *testing.T) {
	svc := &stubService{state: &models.AccessState{State: models.StateGranted}}
	r := newRouter(svc, &stubActivator{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/3b241101-e2bb-4255-8caf-4136c566a962/grant-admin", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"3b241101-e2bb-4255-8caf-4136c566a962"}, svc.granted)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/users/not-a-uuid/grant-admin", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleEventSignedInActivatesSession(t *testing.T) {
	svc := &stubService{state: &models.AccessState{State: models.StateGranted}}
	act := &stubActivator{}
	r := newRouter(svc, act)

	body := `{"type":"SIGNED_IN","user_id":"someone-else"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/access/events", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, act.calls)
	require.Len(t, svc.events, 1)
	assert.Equal(t, "u1", svc.events[0].UserID)

	var resp models.EventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StateGranted, resp.State.State)
}

func TestHandleEventRejectsUnknownType(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc, &stubActivator{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/access/events", strings.NewReader(`{"type":"PASSWORD_RECOVERY"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.events)
}
