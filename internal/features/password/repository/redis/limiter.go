package redis

import (
	"context"
	"fmt"
	"time"

	"social-hub-backend/internal/features/password/repository"
	"social-hub-backend/internal/platform/redis"
)

const attemptsKey = "pwd_change_attempts:%s"

type attemptLimiter struct {
	client *redis.Client
	window time.Duration
}

func NewAttemptLimiter(client *redis.Client, window time.Duration) repository.AttemptLimiter {
	return &attemptLimiter{client: client, window: window}
}

// Hit: окно фиксированное, стартует с первой попытки
func (l *attemptLimiter) Hit(ctx context.Context, userID string) (int64, time.Duration, error) {
	key := fmt.Sprintf(attemptsKey, userID)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count password attempts: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, 0, fmt.Errorf("failed to set attempts window: %w", err)
		}
		return count, l.window, nil
	}

	resetIn, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read attempts window: %w", err)
	}
	if resetIn < 0 {
		// ключ остался без TTL после сбоя между INCR и EXPIRE
		_ = l.client.Expire(ctx, key, l.window).Err()
		resetIn = l.window
	}
	return count, resetIn, nil
}
