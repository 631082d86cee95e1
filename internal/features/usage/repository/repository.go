package repository

import (
	"context"
	"time"

	"social-hub-backend/internal/features/usage/models"
)

// Counters дневные счетчики в Redis, которые пишутся по ходу работы
type Counters interface {
	Add(ctx context.Context, day time.Time, metric string, delta int64) error
	Get(ctx context.Context, day time.Time) (map[string]int64, error)
}

type UsageRepository interface {
	// CountDay считает метрики за день по данным в базе
	CountDay(ctx context.Context, day time.Time) (map[string]int64, error)
	Upsert(ctx context.Context, day time.Time, metrics map[string]int64) error
	ListSince(ctx context.Context, since time.Time) ([]models.DailyUsage, error)
}
