package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"social-hub-backend/internal/features/notification/models"
	"social-hub-backend/internal/features/notification/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.NotificationRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO admin_notifications (title, message, severity, source)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`

	err := r.db.QueryRowContext(ctx, query, n.Title, n.Message, n.Severity, n.Source).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// List возвращает непрочитанные первыми, внутри группы новые первыми
func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Notification, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_notifications").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, title, message, severity, source, is_read, created_at, read_at
		FROM admin_notifications
		ORDER BY is_read ASC, created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var items []*models.Notification
	for rows.Next() {
		var (
			n      models.Notification
			readAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Severity, &n.Source, &n.IsRead, &n.CreatedAt, &readAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		items = append(items, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return items, total, nil
}

// MarkRead идемпотентна: повторная отметка не меняет read_at
func (r *postgresRepository) MarkRead(ctx context.Context, id int64) error {
	query := `
		UPDATE admin_notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}

	return nil
}

func (r *postgresRepository) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_notifications WHERE NOT is_read").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
