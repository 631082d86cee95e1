package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"social-hub-backend/internal/features/security/models"
	"social-hub-backend/internal/features/security/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.EventRepository {
	return &postgresRepository{db: db}
}

// Insert пишет событие и заполняет ID и CreatedAt
func (r *postgresRepository) Insert(ctx context.Context, event *models.Event) error {
	meta := event.Metadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal event metadata: %w", err)
	}

	query := `
		INSERT INTO security_events (user_id, event_type, severity, ip_address, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		nullUUID(event.UserID), event.EventType, string(event.Severity),
		event.IPAddress, event.UserAgent, metaJSON,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert security event: %w", err)
	}

	return nil
}

// List возвращает события по фильтру, новые первыми, и общее количество
func (r *postgresRepository) List(ctx context.Context, filter models.Filter, limit, offset int) ([]*models.Event, int64, error) {
	where, args := buildWhere(filter)

	var total int64
	countQuery := "SELECT COUNT(*) FROM security_events" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count security events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, COALESCE(user_id::text, ''), event_type, severity, ip_address, user_agent, metadata, created_at
		FROM security_events%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list security events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var (
			e        models.Event
			severity string
			metaRaw  []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &severity, &e.IPAddress, &e.UserAgent, &metaRaw, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan security event: %w", err)
		}
		e.Severity = models.Severity(severity)
		if len(metaRaw) > 0 {
			_ = json.Unmarshal(metaRaw, &e.Metadata)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate security events: %w", err)
	}

	return events, total, nil
}

func buildWhere(filter models.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		conds = append(conds, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if filter.Severity != "" {
		args = append(args, string(filter.Severity))
		conds = append(conds, fmt.Sprintf("severity = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func nullUUID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}
