package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"social-hub-backend/internal/features/i18n/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.TranslationRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetLanguage(ctx context.Context, language string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM i18n_translations WHERE language = $1`, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get translations: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate translations: %w", err)
	}
	return out, nil
}
