package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"social-hub-backend/internal/common/logger"
	"social-hub-backend/internal/features/session/models"
	"social-hub-backend/internal/features/session/repository"
	"social-hub-backend/internal/platform/redis"
)

const (
	ActivityKey     = "session_touch:%s:%s"
	ChangesChannel  = "user_sessions:%s"
	ActivityWindow  = time.Minute
	subscriberQueue = 16
)

type activityThrottle struct {
	client *redis.Client
	window time.Duration
}

// NewActivityThrottle: одна запись активности на устройство за window
func NewActivityThrottle(client *redis.Client, window time.Duration) repository.ActivityThrottle {
	if window <= 0 {
		window = ActivityWindow
	}
	return &activityThrottle{client: client, window: window}
}

func (t *activityThrottle) Allow(ctx context.Context, userID, deviceID string) (bool, error) {
	return t.client.SetNX(ctx, fmt.Sprintf(ActivityKey, userID, deviceID), 1, t.window).Result()
}

// Reset снимает троттлинг, чтобы следующий запрос устройства дошел до базы
func (t *activityThrottle) Reset(ctx context.Context, userID string, deviceIDs ...string) error {
	if len(deviceIDs) == 0 {
		return nil
	}
	keys := make([]string, len(deviceIDs))
	for i, id := range deviceIDs {
		keys[i] = fmt.Sprintf(ActivityKey, userID, id)
	}
	return t.client.Del(ctx, keys...).Err()
}

type changeBus struct {
	client *redis.Client
}

func NewChangeBus(client *redis.Client) repository.ChangeBus {
	return &changeBus{client: client}
}

func (b *changeBus) Publish(ctx context.Context, notice models.ChangeNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, fmt.Sprintf(ChangesChannel, notice.UserID), data).Err()
}

// Subscribe возвращает канал уведомлений пользователя и функцию отписки
func (b *changeBus) Subscribe(ctx context.Context, userID string) (<-chan models.ChangeNotice, func() error, error) {
	pubsub := b.client.Subscribe(ctx, fmt.Sprintf(ChangesChannel, userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to session changes: %w", err)
	}

	out := make(chan models.ChangeNotice, subscriberQueue)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var notice models.ChangeNotice
			if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
				logger.Warn().Err(err).Str("channel", msg.Channel).Msg("Malformed session change notice")
				continue
			}
			select {
			case out <- notice:
			default:
				// Получатель все равно перечитает весь список, лишние уведомления не нужны
			}
		}
	}()

	return out, pubsub.Close, nil
}
