package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/cache"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/metrics"
	"social-hub-backend/internal/common/retry"
	"social-hub-backend/internal/features/adminaccess/models"
	"social-hub-backend/internal/features/adminaccess/repository"
	securitymodels "social-hub-backend/internal/features/security/models"
	securityservice "social-hub-backend/internal/features/security/service"
)

type AccessService interface {
	Validate(ctx context.Context, principal *auth.Principal) (*models.AccessState, error)
	HandleAuthEvent(ctx context.Context, event models.AuthEvent) (*models.AccessState, error)
	GrantAdmin(ctx context.Context, actorID, userID string) error
	Invalidate(ctx context.Context, userID string) error
}

// MetadataUpdater синхронизирует app_metadata в Supabase Auth,
// чтобы резервный флаг в JWT совпадал с ролью в профиле.
type MetadataUpdater interface {
	SetAppMetadata(ctx context.Context, userID string, meta map[string]interface{}) error
}

type Config struct {
	Attempts int
	Backoff  time.Duration
	CacheTTL time.Duration
}

type accessService struct {
	repo      repository.AccessRepository
	publisher repository.EventPublisher
	cache     *cache.CacheService
	security  securityservice.Recorder
	metadata  MetadataUpdater
	cfg       Config
	sleep     retry.Sleeper
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*accessService)

// WithSleeper подменяет ожидание между попытками (для тестов)
func WithSleeper(s retry.Sleeper) Option {
	return func(a *accessService) { a.sleep = s }
}

func WithMetadataUpdater(m MetadataUpdater) Option {
	return func(a *accessService) { a.metadata = m }
}

func NewAccessService(
	repo repository.AccessRepository,
	publisher repository.EventPublisher,
	cacheService *cache.CacheService,
	security securityservice.Recorder,
	cfg Config,
	logger *zap.Logger,
	opts ...Option,
) AccessService {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	s := &accessService{
		repo:      repo,
		publisher: publisher,
		cache:     cacheService,
		security:  security,
		cfg:       cfg,
		sleep:     retry.Sleep,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(userID string) string {
	return fmt.Sprintf("admin_access:%s", userID)
}

// Validate проверяет доступ к админке через RPC validate_admin_access.
//
// До cfg.Attempts попыток с линейной паузой attempt × cfg.Backoff.
// Отсутствующая функция (42883) сразу переводит на резервный флаг из JWT.
// Если RPC так и не ответил и флага нет, доступ запрещается.
func (s *accessService) Validate(ctx context.Context, principal *auth.Principal) (*models.AccessState, error) {
	if principal == nil || principal.UserID == "" {
		return nil, errors.NewUnauthorizedError("no authenticated user")
	}
	userID := principal.UserID

	var cached models.AccessState
	if err := s.cache.Get(ctx, cacheKey(userID), &cached); err == nil {
		return &cached, nil
	}

	var granted bool
	attempts, err := retry.Do(ctx, retry.Policy{
		Attempts: s.cfg.Attempts,
		Backoff:  retry.Linear(s.cfg.Backoff),
		Sleep:    s.sleep,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			s.logger.Warn("Admin access validation failed, retrying",
				zap.String("user_id", userID),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		},
	}, func(ctx context.Context, attempt int) error {
		ok, err := s.repo.ValidateAdminAccess(ctx, userID)
		if stderrors.Is(err, repository.ErrFunctionMissing) {
			return retry.Stop(err)
		}
		if err != nil {
			return err
		}
		granted = ok
		return nil
	})

	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	state := &models.AccessState{
		UserID:    userID,
		Attempts:  attempts,
		CheckedAt: s.now(),
	}

	switch {
	case err == nil && granted:
		state.State = models.StateGranted
		state.Source = models.SourceRPC
	case err == nil:
		state.State = models.StateDenied
		state.Source = models.SourceRPC
		state.Message = models.MessageDenied
		s.record(ctx, userID, securitymodels.EventAdminAccessDenied, securitymodels.SeverityWarning, map[string]interface{}{
			"source": models.SourceRPC,
		})
	case principal.IsAdmin:
		state.State = models.StateGranted
		state.Source = models.SourceFallback
		s.logger.Warn("Admin access granted from auth context fallback",
			zap.String("user_id", userID),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
	default:
		state.State = models.StateDenied
		state.Source = models.SourceNone
		state.Message = models.MessageValidationFailed
		s.logger.Error("Admin access validation failed without fallback",
			zap.String("user_id", userID),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		s.record(ctx, userID, securitymodels.EventAdminValidationFailed, securitymodels.SeverityCritical, map[string]interface{}{
			"attempts": attempts,
			"error":    err.Error(),
		})
	}

	metrics.RecordAdminValidation(string(state.State)+"_"+state.Source, attempts)

	// Кэшируем только ответы RPC: временный сбой не должен залипать на TTL
	if state.Source == models.SourceRPC {
		if cerr := s.cache.Set(ctx, cacheKey(userID), state, s.cfg.CacheTTL); cerr != nil {
			s.logger.Warn("Failed to cache admin access state", zap.String("user_id", userID), zap.Error(cerr))
		}
	}

	return state, nil
}

// HandleAuthEvent сбрасывает кэш и, для входа, обновления токена и новой
// роли, проверяет доступ заново. Для остальных событий возвращает nil.
func (s *accessService) HandleAuthEvent(ctx context.Context, event models.AuthEvent) (*models.AccessState, error) {
	if event.UserID == "" {
		return nil, errors.NewValidationError("user_id", "is required")
	}

	if err := s.Invalidate(ctx, event.UserID); err != nil {
		return nil, err
	}

	if !event.Revalidates() {
		s.logger.Debug("Admin access state dropped", zap.String("user_id", event.UserID), zap.String("event", event.Type))
		return nil, nil
	}

	return s.Validate(ctx, &auth.Principal{UserID: event.UserID, IsAdmin: event.IsAdmin})
}

func (s *accessService) Invalidate(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, cacheKey(userID)); err != nil {
		return errors.NewCacheError("drop admin access state", err)
	}
	return nil
}

// GrantAdmin назначает роль admin и рассылает NEW_ADMIN_GRANTED
func (s *accessService) GrantAdmin(ctx context.Context, actorID, userID string) error {
	if err := s.repo.SetRole(ctx, userID, "admin"); err != nil {
		if stderrors.Is(err, repository.ErrProfileNotFound) {
			return errors.NewProfileNotFoundError(userID)
		}
		return errors.NewDatabaseError("grant admin role", err)
	}

	if s.metadata != nil {
		if err := s.metadata.SetAppMetadata(ctx, userID, map[string]interface{}{"role": "admin"}); err != nil {
			s.logger.Warn("Failed to sync admin role to auth provider", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if err := s.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("Failed to drop cached admin state", zap.String("user_id", userID), zap.Error(err))
	}

	if err := s.publisher.Publish(ctx, models.AuthEvent{
		Type:       models.EventNewAdminGranted,
		UserID:     userID,
		IsAdmin:    true,
		OccurredAt: s.now(),
	}); err != nil {
		s.logger.Error("Failed to publish NEW_ADMIN_GRANTED", zap.String("user_id", userID), zap.Error(err))
	}

	s.record(ctx, userID, securitymodels.EventAdminGranted, securitymodels.SeverityInfo, map[string]interface{}{
		"granted_by": actorID,
	})

	s.logger.Info("Admin role granted", zap.String("user_id", userID), zap.String("actor_id", actorID))
	return nil
}

func (s *accessService) record(ctx context.Context, userID, eventType string, severity securitymodels.Severity, meta map[string]interface{}) {
	if s.security == nil {
		return
	}
	if err := s.security.Record(ctx, securitymodels.Event{
		UserID:    userID,
		EventType: eventType,
		Severity:  severity,
		Metadata:  meta,
	}); err != nil {
		s.logger.Warn("Failed to record admin access event", zap.String("event_type", eventType), zap.Error(err))
	}
}
