package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"social-hub-backend/internal/platform/redis"
)

// ErrMiss возвращается, когда ключа нет в кэше
var ErrMiss = errors.New("cache miss")

type CacheService struct {
	redisClient *redis.Client
}

func NewCacheService(redisClient *redis.Client) *CacheService {
	return &CacheService{
		redisClient: redisClient,
	}
}

// Get получает значение из кэша
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if redis.IsNil(err) {
			return ErrMiss
		}
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set сохраняет значение в кэш
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redisClient.Set(ctx, key, data, ttl).Err()
}

func (c *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redisClient.Del(ctx, keys...).Err()
}

// DeletePattern удаляет все ключи по паттерну (через SCAN, без блокировки KEYS)
func (c *CacheService) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			if err := c.redisClient.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.redisClient.Del(ctx, batch...).Err()
	}
	return nil
}

// GetOrSet получает значение из кэша или вычисляет и сохраняет новое.
// Ошибка записи в кэш не мешает вернуть вычисленное значение.
func GetOrSet[T any](ctx context.Context, c *CacheService, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var value T
	if err := c.Get(ctx, key, &value); err == nil {
		return value, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}

// Ключи кэша

func ProfileKey(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

func TranslationsKey(lang string) string {
	return fmt.Sprintf("i18n:%s", lang)
}

func PostSettingsKey(userID string) string {
	return fmt.Sprintf("post_settings:%s", userID)
}

// InvalidateProfileCache инвалидирует кэш профиля и зависимых настроек
func (c *CacheService) InvalidateProfileCache(ctx context.Context, userID string) error {
	return c.Delete(ctx, ProfileKey(userID), PostSettingsKey(userID))
}

// InvalidateTranslations сбрасывает все закэшированные словари
func (c *CacheService) InvalidateTranslations(ctx context.Context) error {
	return c.DeletePattern(ctx, "i18n:*")
}
