package repository

import (
	"context"
	"errors"

	"social-hub-backend/internal/features/session/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionRevoked  = errors.New("session revoked")
)

type SessionRepository interface {
	// Touch создает сессию или обновляет активную. Для отозванной
	// сессии возвращает ErrSessionRevoked и ничего не меняет.
	Touch(ctx context.Context, s *models.Session) (created bool, err error)
	// Activate создает или переоткрывает сессию, возвращает прежний статус ("" для новой)
	Activate(ctx context.Context, s *models.Session) (previous models.Status, err error)
	ListActive(ctx context.Context, userID string) ([]*models.Session, error)
	ToggleTrust(ctx context.Context, userID, sessionID string) (*models.Session, error)
	Remove(ctx context.Context, userID, sessionID string) (*models.Session, error)
	LogoutOthers(ctx context.Context, userID, currentDeviceID string) ([]string, error)
}

// ActivityThrottle ограничивает запись активности одного устройства
type ActivityThrottle interface {
	Allow(ctx context.Context, userID, deviceID string) (bool, error)
	Reset(ctx context.Context, userID string, deviceIDs ...string) error
}

// ChangeBus разносит уведомления об изменении списка сессий
type ChangeBus interface {
	Publish(ctx context.Context, notice models.ChangeNotice) error
	Subscribe(ctx context.Context, userID string) (<-chan models.ChangeNotice, func() error, error)
}
