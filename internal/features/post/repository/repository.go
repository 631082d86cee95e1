package repository

import (
	"context"
	"errors"
	"time"

	"social-hub-backend/internal/features/post/models"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrSettingsNotFound = errors.New("post settings not found")
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// RecentByAuthor последние посты автора, созданные после since, новые первыми
	RecentByAuthor(ctx context.Context, authorID string, since time.Time, limit int) ([]*models.Post, error)
	ListFeed(ctx context.Context, limit, offset int) ([]*models.Post, int64, error)
	SoftDelete(ctx context.Context, id, authorID string) error
}

type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*models.Settings, error)
	Upsert(ctx context.Context, settings *models.Settings) error
}
