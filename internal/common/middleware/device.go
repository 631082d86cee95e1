package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
)

const DeviceIDHeader = "X-Device-ID"

// DeviceID читает стабильный идентификатор устройства из X-Device-ID.
// Если заголовка нет, выдает новый UUID и возвращает его клиенту для сохранения.
// Выданный сервером ID помечается флагом ContextKeyDeviceMinted.
func DeviceID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetHeader(DeviceIDHeader)
		minted := false
		if deviceID == "" {
			deviceID = uuid.NewString()
			minted = true
		} else if _, err := uuid.Parse(deviceID); err != nil {
			AbortWithError(c, errors.NewValidationError("X-Device-ID", "must be a UUID"), logger)
			return
		}

		c.Set(ContextKeyDeviceID, deviceID)
		c.Set(ContextKeyDeviceMinted, minted)
		c.Header(DeviceIDHeader, deviceID)
		c.Next()
	}
}

func GetDeviceID(c *gin.Context) string {
	return c.GetString(ContextKeyDeviceID)
}

// IsDeviceMinted сообщает, что ID устройства выдан сервером в этом запросе
func IsDeviceMinted(c *gin.Context) bool {
	return c.GetBool(ContextKeyDeviceMinted)
}

// GetClientDeviceID возвращает ID устройства, только если его прислал клиент
func GetClientDeviceID(c *gin.Context) string {
	if IsDeviceMinted(c) {
		return ""
	}
	return GetDeviceID(c)
}

// DeviceTracker фиксирует активность устройства пользователя
type DeviceTracker interface {
	Track(ctx context.Context, userID, deviceID, userAgent, ip string) error
}

// SessionTracker обновляет сессию устройства на каждом аутентифицированном
// запросе. Отозванная сессия отклоняется с 401, прочие сбои только логируются.
// Запросы без X-Device-ID не отслеживаются.
func SessionTracker(tracker DeviceTracker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		deviceID := GetClientDeviceID(c)
		if userID == "" || deviceID == "" {
			c.Next()
			return
		}

		err := tracker.Track(c.Request.Context(), userID, deviceID, c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			if errors.HasCode(err, errors.ErrCodeSessionRevoked) {
				AbortWithError(c, err, logger)
				return
			}
			logger.Warn("Failed to track device session",
				zap.String("user_id", userID),
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
		}

		c.Next()
	}
}
