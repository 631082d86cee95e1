package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/session/models"
)

const testSecret = "ws-test-secret"

type stubService struct {
	mu       sync.Mutex
	devices  []models.DeviceSession
	notices  chan models.ChangeNotice
	trackErr error
	tracked  []string
}

func (s *stubService) Track(ctx context.Context, userID, deviceID, ua, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracked = append(s.tracked, deviceID)
	return s.trackErr
}

func (s *stubService) Activate(ctx context.Context, userID, deviceID, ua, ip string) error {
	return nil
}

func (s *stubService) RefreshDevices(ctx context.Context, userID, current string) (*models.DevicesResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DeviceSession, len(s.devices))
	copy(out, s.devices)
	for i := range out {
		out[i].IsCurrent = out[i].DeviceID == current
	}
	return &models.DevicesResponse{Devices: out}, nil
}

func (s *stubService) ToggleDeviceTrust(ctx context.Context, userID, sessionID string) (*models.TrustResponse, error) {
	return nil, nil
}

func (s *stubService) RemoveDevice(ctx context.Context, userID, sessionID, current string) error {
	return nil
}

func (s *stubService) LogoutAllOtherDevices(ctx context.Context, userID, current string) (int, error) {
	return 0, nil
}

func (s *stubService) Subscribe(ctx context.Context, userID string) (<-chan models.ChangeNotice, func() error, error) {
	return s.notices, func() error { return nil }, nil
}

func (s *stubService) setDevices(d ...models.DeviceSession) {
	s.mu.Lock()
	s.devices = d
	s.mu.Unlock()
}

func newServer(t *testing.T, svc *stubService) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	NewHandler(svc, auth.NewVerifier(testSecret), "*", zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func token(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/sessions?" + query
}

func TestPushesSnapshotAndChanges(t *testing.T) {
	svc := &stubService{notices: make(chan models.ChangeNotice, 1)}
	svc.setDevices(models.DeviceSession{ID: "s1", DeviceID: "d1"})
	srv := newServer(t, svc)

	const device = "0b8c1f2e-9a63-4f4e-8d3b-2f1c5a7d9e01"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "access_token="+token(t)+"&device_id="+device), nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	require.Len(t, msg.Devices, 1)

	svc.setDevices(
		models.DeviceSession{ID: "s1", DeviceID: "d1"},
		models.DeviceSession{ID: "s2", DeviceID: device},
	)
	svc.notices <- models.ChangeNotice{UserID: "u1", Event: "session_created"}

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "devices_changed", msg.Type)
	assert.Equal(t, "session_created", msg.Event)
	require.Len(t, msg.Devices, 2)
	assert.True(t, msg.Devices[1].IsCurrent)
}

func TestRejectsMissingToken(t *testing.T) {
	srv := newServer(t, &stubService{notices: make(chan models.ChangeNotice)})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRejectsRevokedDevice(t *testing.T) {
	svc := &stubService{
		notices:  make(chan models.ChangeNotice),
		trackErr: errors.New(errors.ErrCodeSessionRevoked, "This device has been signed out"),
	}
	srv := newServer(t, svc)

	const device = "0b8c1f2e-9a63-4f4e-8d3b-2f1c5a7d9e01"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "access_token="+token(t)+"&device_id="+device), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, []string{device}, svc.tracked)
}
