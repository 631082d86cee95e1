package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"social-hub-backend/internal/features/post/models"
	"social-hub-backend/internal/features/post/repository"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get читает настройки через RPC get_post_settings
func (r *settingsRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	query := `
		SELECT user_id, default_visibility, allow_comments, allow_shares, duplicate_check_enabled, updated_at
		FROM get_post_settings($1)
	`

	var (
		s          models.Settings
		visibility string
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &visibility, &s.AllowComments, &s.AllowShares, &s.DuplicateCheckEnabled, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get post settings: %w", err)
	}
	s.DefaultVisibility = models.Visibility(visibility)
	return &s, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO post_settings (user_id, default_visibility, allow_comments, allow_shares, duplicate_check_enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			default_visibility = EXCLUDED.default_visibility,
			allow_comments = EXCLUDED.allow_comments,
			allow_shares = EXCLUDED.allow_shares,
			duplicate_check_enabled = EXCLUDED.duplicate_check_enabled,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		s.UserID, string(s.DefaultVisibility), s.AllowComments, s.AllowShares, s.DuplicateCheckEnabled,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert post settings: %w", err)
	}
	return nil
}
