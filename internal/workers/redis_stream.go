package workers

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/metrics"
	accessmodels "social-hub-backend/internal/features/adminaccess/models"
	accessredis "social-hub-backend/internal/features/adminaccess/repository/redis"
	"social-hub-backend/internal/platform/redis"
)

const (
	consumerGroup = "social_hub_backend_consumers"
	workerName    = "auth_events"
)

// SessionActivator переоткрывает сессию устройства на SIGNED_IN
type SessionActivator interface {
	Activate(ctx context.Context, userID, deviceID, userAgent, ip string) error
}

// AccessEventHandler пересчитывает доступ к админке после события
type AccessEventHandler interface {
	HandleAuthEvent(ctx context.Context, event accessmodels.AuthEvent) (*accessmodels.AccessState, error)
}

// AuthEventWorker читает поток auth:events через consumer group
type AuthEventWorker struct {
	rdb      *redis.Client
	sessions SessionActivator
	access   AccessEventHandler
	consumer string
	block    time.Duration
	logger   *zap.Logger
}

func NewAuthEventWorker(rdb *redis.Client, sessions SessionActivator, access AccessEventHandler, consumer string, logger *zap.Logger) *AuthEventWorker {
	if consumer == "" {
		consumer = "social_hub_worker_1"
	}
	return &AuthEventWorker{
		rdb:      rdb,
		sessions: sessions,
		access:   access,
		consumer: consumer,
		block:    5 * time.Second,
		logger:   logger.With(zap.String("worker", workerName)),
	}
}

// Run слушает поток до отмены ctx
func (w *AuthEventWorker) Run(ctx context.Context) error {
	w.ensureGroup(ctx)
	w.logger.Info("Starting auth event stream worker", zap.String("consumer", w.consumer))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping auth event stream worker")
			return nil
		default:
		}

		if err := w.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error("Error reading from stream", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (w *AuthEventWorker) ensureGroup(ctx context.Context) {
	err := w.rdb.XGroupCreateMkStream(ctx, accessredis.AuthEventsStream, consumerGroup, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		w.logger.Error("Error creating consumer group", zap.Error(err))
	}
}

// poll читает одну пачку сообщений; пустое ожидание ошибкой не считается
func (w *AuthEventWorker) poll(ctx context.Context) error {
	entries, err := w.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: w.consumer,
		Streams:  []string{accessredis.AuthEventsStream, ">"},
		Count:    10,
		Block:    w.block,
	}).Result()
	if err != nil {
		if redis.IsNil(err) {
			return nil
		}
		return err
	}

	for _, stream := range entries {
		for _, msg := range stream.Messages {
			w.processMessage(ctx, msg.ID, msg.Values)
			if err := w.rdb.XAck(ctx, accessredis.AuthEventsStream, consumerGroup, msg.ID).Err(); err != nil {
				w.logger.Warn("Failed to ack message", zap.String("id", msg.ID), zap.Error(err))
			}
		}
	}
	return nil
}

func (w *AuthEventWorker) processMessage(ctx context.Context, id string, values map[string]interface{}) {
	event, err := accessredis.DecodeEvent(values)
	if err != nil {
		// битое сообщение подтверждается, иначе оно вернется навсегда
		w.logger.Warn("Skipping malformed auth event", zap.String("id", id), zap.Error(err))
		metrics.RecordWorkerMessage(workerName, "skipped")
		return
	}

	log := w.logger.With(
		zap.String("id", id),
		zap.String("type", event.Type),
		zap.String("user_id", event.UserID),
	)

	result := "ok"
	if event.Type == accessmodels.EventSignedIn && event.DeviceID != "" && w.sessions != nil {
		if err := w.sessions.Activate(ctx, event.UserID, event.DeviceID, event.UserAgent, event.IPAddress); err != nil {
			log.Warn("Failed to activate device session", zap.Error(err))
			result = "error"
		}
	}

	state, err := w.access.HandleAuthEvent(ctx, event)
	if err != nil {
		log.Error("Failed to handle auth event", zap.Error(err))
		metrics.RecordWorkerMessage(workerName, "error")
		return
	}
	if state != nil {
		log.Debug("Admin access re-validated", zap.String("state", string(state.State)))
	}
	metrics.RecordWorkerMessage(workerName, result)
}
