package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"social-hub-backend/internal/features/usage/models"
	"social-hub-backend/internal/features/usage/repository"
	"social-hub-backend/internal/platform/redis"
)

const (
	countersKey = "usage:%s"
	// Счетчики живут дольше окна агрегации, чтобы крон успел их забрать
	countersTTL = 8 * 24 * time.Hour
)

type counters struct {
	client *redis.Client
}

func NewCounters(client *redis.Client) repository.Counters {
	return &counters{client: client}
}

func (c *counters) Add(ctx context.Context, day time.Time, metric string, delta int64) error {
	key := fmt.Sprintf(countersKey, models.DayKey(day))

	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, key, metric, delta)
	pipe.Expire(ctx, key, countersTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add usage counter: %w", err)
	}
	return nil
}

func (c *counters) Get(ctx context.Context, day time.Time) (map[string]int64, error) {
	raw, err := c.client.HGetAll(ctx, fmt.Sprintf(countersKey, models.DayKey(day))).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read usage counters: %w", err)
	}

	out := make(map[string]int64, len(raw))
	for metric, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[metric] = n
	}
	return out, nil
}
