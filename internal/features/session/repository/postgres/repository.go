package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"social-hub-backend/internal/features/session/models"
	"social-hub-backend/internal/features/session/repository"
)

const sessionColumns = `id, user_id, device_id, device_name, device_type, browser, os,
	ip_address, user_agent, is_trusted, status, last_active_at, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.SessionRepository {
	return &postgresRepository{db: db}
}

// Touch: условие WHERE в DO UPDATE не дает тронуть отозванную строку,
// тогда RETURNING пустой и это значит «сессия отозвана».
func (r *postgresRepository) Touch(ctx context.Context, s *models.Session) (bool, error) {
	query := `
		INSERT INTO user_sessions (user_id, device_id, device_name, device_type, browser, os, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			device_name = EXCLUDED.device_name,
			device_type = EXCLUDED.device_type,
			browser = EXCLUDED.browser,
			os = EXCLUDED.os,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			last_active_at = NOW(),
			updated_at = NOW()
		WHERE user_sessions.status = 'active'
		RETURNING id, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.DeviceID, s.DeviceName, s.DeviceType, s.Browser, s.OS, s.IPAddress, s.UserAgent,
	).Scan(&s.ID, &inserted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, repository.ErrSessionRevoked
		}
		return false, fmt.Errorf("failed to touch session: %w", err)
	}

	return inserted, nil
}

func (r *postgresRepository) Activate(ctx context.Context, s *models.Session) (models.Status, error) {
	query := `
		WITH prev AS (
			SELECT status FROM user_sessions WHERE user_id = $1 AND device_id = $2
		)
		INSERT INTO user_sessions (user_id, device_id, device_name, device_type, browser, os, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			device_name = EXCLUDED.device_name,
			device_type = EXCLUDED.device_type,
			browser = EXCLUDED.browser,
			os = EXCLUDED.os,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			status = 'active',
			last_active_at = NOW(),
			updated_at = NOW()
		RETURNING id, COALESCE((SELECT status FROM prev), '')
	`

	var previous string
	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.DeviceID, s.DeviceName, s.DeviceType, s.Browser, s.OS, s.IPAddress, s.UserAgent,
	).Scan(&s.ID, &previous)
	if err != nil {
		return "", fmt.Errorf("failed to activate session: %w", err)
	}

	s.Status = models.StatusActive
	return models.Status(previous), nil
}

// ListActive активные сессии, последние активные первыми
func (r *postgresRepository) ListActive(ctx context.Context, userID string) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY last_active_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

func (r *postgresRepository) ToggleTrust(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	query := `
		UPDATE user_sessions
		SET is_trusted = NOT is_trusted, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'active'
		RETURNING ` + sessionColumns

	s, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrSessionNotFound
	}
	return s, err
}

// Remove мягкое удаление: status = 'removed'
func (r *postgresRepository) Remove(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	query := `
		UPDATE user_sessions
		SET status = 'removed', updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'active'
		RETURNING ` + sessionColumns

	s, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrSessionNotFound
	}
	return s, err
}

// LogoutOthers переводит все прочие активные сессии в logged_out и
// возвращает их device_id. Текущее устройство не трогается никогда.
func (r *postgresRepository) LogoutOthers(ctx context.Context, userID, currentDeviceID string) ([]string, error) {
	query := `
		UPDATE user_sessions
		SET status = 'logged_out', updated_at = NOW()
		WHERE user_id = $1 AND device_id <> $2 AND status = 'active'
		RETURNING device_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID, currentDeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to logout other sessions: %w", err)
	}
	defer rows.Close()

	var devices []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan device id: %w", err)
		}
		devices = append(devices, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate logged out sessions: %w", err)
	}

	return devices, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		s      models.Session
		status string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.DeviceID, &s.DeviceName, &s.DeviceType, &s.Browser, &s.OS,
		&s.IPAddress, &s.UserAgent, &s.IsTrusted, &status, &s.LastActiveAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	s.Status = models.Status(status)
	return &s, nil
}
