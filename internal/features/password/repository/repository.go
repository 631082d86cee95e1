package repository

import (
	"context"
	"time"
)

// AttemptLimiter считает попытки смены пароля в скользящем окне
type AttemptLimiter interface {
	// Hit регистрирует попытку и возвращает число попыток в текущем окне
	// и время до его сброса.
	Hit(ctx context.Context, userID string) (count int64, resetIn time.Duration, err error)
}
