package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"social-hub-backend/internal/features/adminaccess/repository"
)

// undefined_function
const pqUndefinedFunction = "42883"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.AccessRepository {
	return &postgresRepository{db: db}
}

// ValidateAdminAccess вызывает RPC validate_admin_access
func (r *postgresRepository) ValidateAdminAccess(ctx context.Context, userID string) (bool, error) {
	var ok sql.NullBool
	err := r.db.QueryRowContext(ctx, "SELECT validate_admin_access($1)", userID).Scan(&ok)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUndefinedFunction {
			return false, repository.ErrFunctionMissing
		}
		return false, fmt.Errorf("failed to validate admin access: %w", err)
	}
	return ok.Valid && ok.Bool, nil
}

func (r *postgresRepository) SetRole(ctx context.Context, userID, role string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1", userID, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
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
