package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"social-hub-backend/internal/features/usage/models"
	"social-hub-backend/internal/features/usage/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.UsageRepository {
	return &postgresRepository{db: db}
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	d := day.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func (r *postgresRepository) CountDay(ctx context.Context, day time.Time) (map[string]int64, error) {
	start, end := dayBounds(day)

	query := `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM profiles WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM user_sessions WHERE status = 'active' AND last_active_at >= $1 AND last_active_at < $2)
	`

	var posts, profiles, sessions int64
	if err := r.db.QueryRowContext(ctx, query, start, end).Scan(&posts, &profiles, &sessions); err != nil {
		return nil, fmt.Errorf("failed to count daily usage: %w", err)
	}

	return map[string]int64{
		models.MetricPostsCreated:   posts,
		models.MetricNewProfiles:    profiles,
		models.MetricActiveSessions: sessions,
	}, nil
}

// Upsert перезаписывает значения за день одной транзакцией
func (r *postgresRepository) Upsert(ctx context.Context, day time.Time, metrics map[string]int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO resource_usage (usage_date, metric, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (usage_date, metric) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	date := models.DayKey(day)
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := tx.ExecContext(ctx, query, date, name, metrics[name]); err != nil {
			return fmt.Errorf("failed to upsert usage %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usage: %w", err)
	}
	return nil
}

// ListSince дни начиная с since, новые первыми
func (r *postgresRepository) ListSince(ctx context.Context, since time.Time) ([]models.DailyUsage, error) {
	query := `
		SELECT usage_date, metric, value
		FROM resource_usage
		WHERE usage_date >= $1
		ORDER BY usage_date DESC, metric
	`

	rows, err := r.db.QueryContext(ctx, query, models.DayKey(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}
	defer rows.Close()

	var (
		days  []models.DailyUsage
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			date   time.Time
			metric string
			value  int64
		)
		if err := rows.Scan(&date, &metric, &value); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		key := models.DayKey(date)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, models.DailyUsage{Date: key, Metrics: map[string]int64{}})
		}
		days[i].Metrics[metric] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage: %w", err)
	}

	return days, nil
}
