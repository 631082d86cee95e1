// Package ws пушит актуальный список устройств по WebSocket.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/middleware"
	"social-hub-backend/internal/features/session/models"
	"social-hub-backend/internal/features/session/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message кадр, отправляемый клиенту
type Message struct {
	Type    string                 `json:"type"`
	Event   string                 `json:"event,omitempty"`
	Devices []models.DeviceSession `json:"devices"`
}

type Handler struct {
	service  service.SessionService
	verifier *auth.Verifier
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler: allowedOrigin пустой или "*" пропускает любой Origin
func NewHandler(service service.SessionService, verifier *auth.Verifier, allowedOrigin string, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// RegisterRoutes: браузер не умеет ставить заголовки на WebSocket,
// поэтому токен и устройство приходят в query.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws/sessions", h.serve)
}

// @Summary Realtime device list
// @Description Upgrades to WebSocket and pushes the full device list on every session change
// @Tags sessions
// @Param access_token query string true "Supabase access token"
// @Param device_id query string false "Device ID"
// @Success 101
// @Failure 401 {object} middleware.ErrorResponse "Invalid token or revoked device"
// @Router /ws/sessions [get]
func (h *Handler) serve(c *gin.Context) {
	principal, err := h.verifier.Verify(c.Query("access_token"))
	if err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeUnauthorized, "Invalid or expired access token"), h.logger)
		return
	}
	deviceID := c.Query("device_id")
	if deviceID != "" {
		if _, err := uuid.Parse(deviceID); err != nil {
			middleware.AbortWithError(c, errors.NewValidationError("device_id", "must be a UUID"), h.logger)
			return
		}

		// Удаленное или разлогиненное устройство не получает подписку
		if err := h.service.Track(c.Request.Context(), principal.UserID, deviceID, c.Request.UserAgent(), c.ClientIP()); err != nil {
			if errors.HasCode(err, errors.ErrCodeSessionRevoked) {
				middleware.AbortWithError(c, err, h.logger)
				return
			}
			h.logger.Warn("Failed to track device session", zap.String("user_id", principal.UserID), zap.Error(err))
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	notices, unsubscribe, err := h.service.Subscribe(ctx, principal.UserID)
	if err != nil {
		h.logger.Error("Failed to subscribe to session changes", zap.String("user_id", principal.UserID), zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(writeWait))
		return
	}
	defer func() { _ = unsubscribe() }()

	go h.readLoop(conn, cancel)

	if !h.push(ctx, conn, principal.UserID, deviceID, "snapshot", "") {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-notices:
			if !ok {
				return
			}
			// Любое изменение = перечитать полный список
			if !h.push(ctx, conn, principal.UserID, deviceID, "devices_changed", notice.Event) {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop держит pong-дедлайн и ловит закрытие со стороны клиента
func (h *Handler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) push(ctx context.Context, conn *websocket.Conn, userID, deviceID, msgType, event string) bool {
	resp, err := h.service.RefreshDevices(ctx, userID, deviceID)
	if err != nil {
		h.logger.Warn("Failed to refresh devices for push", zap.String("user_id", userID), zap.Error(err))
		// Клиент дождется следующего уведомления
		return ctx.Err() == nil
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Message{Type: msgType, Event: event, Devices: resp.Devices}); err != nil {
		h.logger.Debug("WebSocket write failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return true
}
