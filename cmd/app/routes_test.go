package main

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
	accessHTTP "social-hub-backend/internal/features/adminaccess/delivery/http"
	"social-hub-backend/internal/features/adminaccess/models"
)

const testDevice = "3b241101-e2bb-4255-8caf-4136c566a962"

type trackerStub struct {
	err   error
	calls int
}

func (t *trackerStub) Track(ctx context.Context, userID, deviceID, userAgent, ip string) error {
	t.calls++
	return t.err
}

type accessStub struct {
	events []models.AuthEvent
}

func (s *accessStub) Validate(ctx context.Context, p *auth.Principal) (*models.AccessState, error) {
	return &models.AccessState{State: models.StateGranted}, nil
}

func (s *accessStub) HandleAuthEvent(ctx context.Context, e models.AuthEvent) (*models.AccessState, error) {
	s.events = append(s.events, e)
	return &models.AccessState{State: models.StateGranted}, nil
}

func (s *accessStub) GrantAdmin(ctx context.Context, actorID, userID string) error { return nil }

func (s *accessStub) Invalidate(ctx context.Context, userID string) error { return nil }

type activatorStub struct {
	devices []string
}

func (a *activatorStub) Activate(ctx context.Context, userID, deviceID, ua, ip string) error {
	a.devices = append(a.devices, deviceID)
	return nil
}

// testAuthn подставляет пользователя из X-Test-User вместо проверки JWT
func testAuthn(c *gin.Context) {
	user := c.GetHeader("X-Test-User")
	if user == "" {
		user = "u1"
	}
	middleware.SetPrincipal(c, &auth.Principal{UserID: user})
	c.Next()
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func TestSignInEventReachesRevokedDevice(t *testing.T) {
	logger := zap.NewNop()
	r := newTestEngine()
	tracker := &trackerStub{err: errors.New(errors.ErrCodeSessionRevoked, "Session has been revoked")}
	api := newAPIGroups(r, testAuthn, tracker,
		middleware.NewRateLimiter(100, 100, logger),
		middleware.NewRateLimiter(100, 100, logger),
		logger)

	svc := &accessStub{}
	act := &activatorStub{}
	h := accessHTTP.NewAccessHandler(svc, act, logger)
	h.RegisterRoutes(api.authed)
	h.RegisterEventRoutes(api.signIn)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/access/events", strings.NewReader(`{"type":"SIGNED_IN"}`))
	req.Header.Set(middleware.DeviceIDHeader, testDevice)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{testDevice}, act.devices)
	require.Len(t, svc.events, 1)
	assert.Equal(t, 0, tracker.calls)

	// Остальные маршруты для отозванного устройства закрыты
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/access", nil)
	req.Header.Set(middleware.DeviceIDHeader, testDevice)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 1, tracker.calls)
}

func TestUserLimiterKeysByUser(t *testing.T) {
	logger := zap.NewNop()
	r := newTestEngine()
	api := newAPIGroups(r, testAuthn, &trackerStub{},
		middleware.NewRateLimiter(0.001, 1, logger),
		middleware.NewRateLimiter(0.001, 1, logger),
		logger)
	api.authed.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, middleware.GetUserID(c)) })
	api.public.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(path, user string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// Один IP, разные пользователи: у каждого своя корзина
	assert.Equal(t, http.StatusOK, call("/api/v1/me", "alice"))
	assert.Equal(t, http.StatusTooManyRequests, call("/api/v1/me", "alice"))
	assert.Equal(t, http.StatusOK, call("/api/v1/me", "bob"))

	// Публичные маршруты считаются по IP отдельно от пользовательских
	assert.Equal(t, http.StatusOK, call("/api/v1/open", ""))
	assert.Equal(t, http.StatusTooManyRequests, call("/api/v1/open", ""))
}
