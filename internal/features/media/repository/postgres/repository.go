package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"social-hub-backend/internal/features/media/models"
	"social-hub-backend/internal/features/media/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.PhotoRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Insert(ctx context.Context, photo *models.Photo) (bool, error) {
	// xmax = 0 только у строки, созданной этим INSERT, а не обновленной по конфликту
	query := `
		INSERT INTO user_photos (user_id, object_key, url, purpose, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (object_key) DO UPDATE SET size_bytes = EXCLUDED.size_bytes
		RETURNING id, created_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		photo.UserID, photo.ObjectKey, photo.URL, string(photo.Purpose), photo.SizeBytes,
	).Scan(&photo.ID, &photo.CreatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to insert photo: %w", err)
	}
	return inserted, nil
}

func (r *postgresRepository) SetAvatar(ctx context.Context, userID, url string) error {
	query := `UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, url)
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrProfileNotFound
	}
	return nil
}
