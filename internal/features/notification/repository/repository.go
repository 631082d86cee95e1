package repository

import (
	"context"
	"errors"

	"social-hub-backend/internal/features/notification/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, limit, offset int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context) (int64, error)
}
