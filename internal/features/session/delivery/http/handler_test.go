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

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/session/models"
)

const (
	deviceA  = "0b8c1f2e-9a63-4f4e-8d3b-2f1c5a7d9e01"
	sessionA = "7e2a3c44-5b6d-4e8f-9a01-b2c3d4e5f607"
)

type stubService struct {
	removed     []string
	loggedOutBy string
}

func (s *stubService) Track(ctx context.Context, userID, deviceID, ua, ip string) error { return nil }

func (s *stubService) Activate(ctx context.Context, userID, deviceID, ua, ip string) error {
	return nil
}

func (s *stubService) RefreshDevices(ctx context.Context, userID, current string) (*models.DevicesResponse, error) {
	return &models.DevicesResponse{Devices: []models.DeviceSession{
		{ID: sessionA, DeviceID: current, IsCurrent: true},
	}}, nil
}

func (s *stubService) ToggleDeviceTrust(ctx context.Context, userID, sessionID string) (*models.TrustResponse, error) {
	if sessionID != sessionA {
		return nil, errors.NewSessionNotFoundError(sessionID)
	}
	return &models.TrustResponse{SessionID: sessionID, IsTrusted: true}, nil
}

func (s *stubService) RemoveDevice(ctx context.Context, userID, sessionID, current string) error {
	s.removed = append(s.removed, sessionID)
	return nil
}

func (s *stubService) LogoutAllOtherDevices(ctx context.Context, userID, current string) (int, error) {
	s.loggedOutBy = current
	return 3, nil
}

func (s *stubService) Subscribe(ctx context.Context, userID string) (<-chan models.ChangeNotice, func() error, error) {
	return nil, nil, nil
}

func newRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	r := gin.New()
	r.Use(middleware.RequestID(), func(c *gin.Context) {
		middleware.SetPrincipal(c, &auth.Principal{UserID: "u1"})
		c.Next()
	}, middleware.DeviceID(logger))

	NewSessionHandler(svc, logger).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(middleware.DeviceIDHeader, deviceA)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListDevices(t *testing.T) {
	w := do(newRouter(&stubService{}), http.MethodGet, "/api/v1/sessions")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DevicesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Devices, 1)
	assert.Equal(t, deviceA, resp.Devices[0].DeviceID)
	assert.True(t, resp.Devices[0].IsCurrent)
}

func TestToggleTrust(t *testing.T) {
	r := newRouter(&stubService{})

	w := do(r, http.MethodPost, "/api/v1/sessions/"+sessionA+"/trust")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sessions/not-a-uuid/trust")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sessions/"+deviceA+"/trust")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveDevice(t *testing.T) {
	svc := &stubService{}
	w := do(newRouter(svc), http.MethodDelete, "/api/v1/sessions/"+sessionA)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{sessionA}, svc.removed)
}

func TestLogoutOthers(t *testing.T) {
	svc := &stubService{}
	w := do(newRouter(svc), http.MethodPost, "/api/v1/sessions/logout-others")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"logged_out":3}`, w.Body.String())
	assert.Equal(t, deviceA, svc.loggedOutBy)
}

func TestLogoutOthersRequiresClientDevice(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/logout-others", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Empty(t, svc.loggedOutBy)
}
