package repository

import (
	"context"

	"social-hub-backend/internal/features/security/models"
)

type EventRepository interface {
	Insert(ctx context.Context, event *models.Event) error
	List(ctx context.Context, filter models.Filter, limit, offset int) ([]*models.Event, int64, error)
}
