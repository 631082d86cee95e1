package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/errors"
)

const testSecret = "test-jwt-secret-with-enough-length-123456"

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleErrorWrapperMapsCodes(t *testing.T) {
	logger := zap.NewNop()
	wrap := HandleErrorWrapper(logger)

	cases := []struct {
		err    error
		status int
	}{
		{errors.NewPostNotFoundError("p1"), http.StatusNotFound},
		{errors.New(errors.ErrCodeDuplicatePost, "dup"), http.StatusConflict},
		{errors.New(errors.ErrCodeSessionRevoked, "revoked"), http.StatusUnauthorized},
		{errors.New(errors.ErrCodeAdminAccessDenied, "denied"), http.StatusForbidden},
		{errors.New(errors.ErrCodePasswordBreached, "pwned"), http.StatusBadRequest},
		{errors.NewStorageError("head", assert.AnError), http.StatusBadGateway},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		r := gin.New()
		r.Use(RequestID())
		err := tc.err
		r.GET("/x", wrap(func(c *gin.Context) { _ = c.Error(err) }))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, tc.status, w.Code, err.Error())
		resp := decodeError(t, w)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.RequestID)
		assert.Equal(t, resp.RequestID, w.Header().Get("X-Request-ID"))
	}
}

func TestHandleErrorWrapperBindingErrors(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type req struct {
		Phone string `json:"phone" binding:"required,e164orlocal"`
	}

	r := gin.New()
	r.POST("/x", HandleErrorWrapper(zap.NewNop())(func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"phone":"12"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, errors.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "phone", resp.Error.Details["field"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"phone":"(555) 123-4567"}`)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, errors.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, w.Body.String(), "goroutine")
}

func TestAuth(t *testing.T) {
	verifier := auth.NewVerifier(testSecret)

	r := gin.New()
	r.Use(Auth(verifier, zap.NewNop()))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestDeviceIDMintsWhenMissing(t *testing.T) {
	r := gin.New()
	r.Use(DeviceID(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetDeviceID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(DeviceIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(DeviceIDHeader, "3b241101-e2bb-4255-8caf-4136c566a962")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "3b241101-e2bb-4255-8caf-4136c566a962", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(DeviceIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeTracker struct {
	err   error
	calls int
}

func (f *fakeTracker) Track(ctx context.Context, userID, deviceID, userAgent, ip string) error {
	f.calls++
	return f.err
}

func TestSessionTracker(t *testing.T) {
	build := func(tracker DeviceTracker) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			SetPrincipal(c, &auth.Principal{UserID: "user-1"})
			c.Next()
		})
		r.Use(DeviceID(zap.NewNop()), SessionTracker(tracker, zap.NewNop()))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	withDevice := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(DeviceIDHeader, "3b241101-e2bb-4255-8caf-4136c566a962")
		return req
	}

	ok := &fakeTracker{}
	w := httptest.NewRecorder()
	build(ok).ServeHTTP(w, withDevice())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ok.calls)

	revoked := &fakeTracker{err: errors.New(errors.ErrCodeSessionRevoked, "Session has been revoked")}
	w = httptest.NewRecorder()
	build(revoked).ServeHTTP(w, withDevice())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	flaky := &fakeTracker{err: assert.AnError}
	w = httptest.NewRecorder()
	build(flaky).ServeHTTP(w, withDevice())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionTrackerSkipsMintedDevice(t *testing.T) {
	tracker := &fakeTracker{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		SetPrincipal(c, &auth.Principal{UserID: "user-1"})
		c.Next()
	})
	r.Use(DeviceID(zap.NewNop()), SessionTracker(tracker, zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		assert.True(t, IsDeviceMinted(c))
		assert.Empty(t, GetClientDeviceID(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(DeviceIDHeader))
	assert.Equal(t, 0, tracker.calls)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	assert.Equal(t, 1, rl.Cleanup(-time.Second))
}
