package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"social-hub-backend/internal/features/adminaccess/models"
	"social-hub-backend/internal/features/adminaccess/repository"
	"social-hub-backend/internal/platform/redis"
)

const (
	AuthEventsStream = "auth:events"
	// Поток не растет бесконечно
	streamMaxLen = 10000
)

type streamPublisher struct {
	client *redis.Client
}

func NewStreamPublisher(client *redis.Client) repository.EventPublisher {
	return &streamPublisher{client: client}
}

func (p *streamPublisher) Publish(ctx context.Context, event models.AuthEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	err := p.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: AuthEventsStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: EncodeEvent(event),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish auth event: %w", err)
	}
	return nil
}

// EncodeEvent раскладывает событие в плоские поля записи потока
func EncodeEvent(e models.AuthEvent) map[string]interface{} {
	return map[string]interface{}{
		"type":        e.Type,
		"user_id":     e.UserID,
		"device_id":   e.DeviceID,
		"user_agent":  e.UserAgent,
		"ip_address":  e.IPAddress,
		"is_admin":    strconv.FormatBool(e.IsAdmin),
		"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

// DecodeEvent собирает событие из записи потока
func DecodeEvent(values map[string]interface{}) (models.AuthEvent, error) {
	str := func(key string) string {
		if v, ok := values[key].(string); ok {
			return v
		}
		return ""
	}

	e := models.AuthEvent{
		Type:      str("type"),
		UserID:    str("user_id"),
		DeviceID:  str("device_id"),
		UserAgent: str("user_agent"),
		IPAddress: str("ip_address"),
	}
	if e.Type == "" {
		return e, fmt.Errorf("auth event without type")
	}
	if e.UserID == "" {
		return e, fmt.Errorf("auth event %s without user_id", e.Type)
	}
	e.IsAdmin, _ = strconv.ParseBool(str("is_admin"))
	if ts, err := time.Parse(time.RFC3339Nano, str("occurred_at")); err == nil {
		e.OccurredAt = ts
	}
	return e, nil
}
