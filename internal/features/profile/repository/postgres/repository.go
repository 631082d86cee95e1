package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"social-hub-backend/internal/features/profile/models"
	"social-hub-backend/internal/features/profile/repository"
)

const (
	uniqueViolation = "23505"
	profileColumns  = `id, username, full_name, bio, COALESCE(phone, ''), COALESCE(avatar_url, ''), role, language, created_at, updated_at`
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ProfileRepository {
	return &postgresRepository{db: db}
}

// Create создает профиль; id совпадает с id пользователя Supabase Auth
func (r *postgresRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, username, full_name, phone, role, language)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Username, p.FullName, nullString(p.Phone), p.Role, p.Language,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrProfileExists
		}
		if isUniqueViolation(err) {
			return repository.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET username = $2, full_name = $3, bio = $4, phone = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Username, p.FullName, p.Bio, nullString(p.Phone),
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrProfileNotFound
		}
		if isUniqueViolation(err) {
			return repository.ErrUsernameTaken
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateLanguage(ctx context.Context, id, language string) error {
	query := `UPDATE profiles SET language = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, language)
	if err != nil {
		return fmt.Errorf("failed to update language: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrProfileNotFound
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Profile, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.Bio, &p.Phone, &p.AvatarURL,
		&p.Role, &p.Language, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
