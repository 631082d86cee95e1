package service

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/validation"
	"social-hub-backend/internal/features/password/models"
	"social-hub-backend/internal/features/password/repository"
	securitymodels "social-hub-backend/internal/features/security/models"
	securityservice "social-hub-backend/internal/features/security/service"
	"social-hub-backend/internal/platform/supabase"
)

// AuthProvider операции Supabase Auth, нужные для смены пароля
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	UpdateUserPassword(ctx context.Context, userID, password string) error
	GetUser(ctx context.Context, userID string) (*supabase.User, error)
}

// BreachChecker возвращает, сколько раз пароль встречался в утечках
type BreachChecker interface {
	BreachCount(ctx context.Context, password string) (int, error)
}

type PasswordService interface {
	ChangePassword(ctx context.Context, principal *auth.Principal, req models.ChangeRequest, ip, userAgent string) error
}

type Config struct {
	MaxAttempts int64
	Window      time.Duration
}

type passwordService struct {
	limiter  repository.AttemptLimiter
	provider AuthProvider
	breaches BreachChecker
	security securityservice.Recorder
	cfg      Config
	logger   *zap.Logger
}

func NewPasswordService(
	limiter repository.AttemptLimiter,
	provider AuthProvider,
	breaches BreachChecker,
	security securityservice.Recorder,
	cfg Config,
	logger *zap.Logger,
) PasswordService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	return &passwordService{
		limiter:  limiter,
		provider: provider,
		breaches: breaches,
		security: security,
		cfg:      cfg,
		logger:   logger,
	}
}

// ChangePassword: лимит попыток, политика, проверка утечек, проверка
// текущего пароля и обновление через Supabase Auth.
func (s *passwordService) ChangePassword(ctx context.Context, principal *auth.Principal, req models.ChangeRequest, ip, userAgent string) error {
	userID := principal.UserID

	count, resetIn, err := s.limiter.Hit(ctx, userID)
	if err != nil {
		return errors.NewCacheError("count password attempts", err)
	}
	if count > s.cfg.MaxAttempts {
		s.audit(ctx, userID, ip, userAgent, securitymodels.EventPasswordChangeFailed, securitymodels.SeverityWarning, "rate_limited")
		return errors.NewRateLimitError("password change", resetIn).
			WithDetail("retry_after_seconds", int(resetIn.Seconds()))
	}

	email := principal.Email
	if email == "" {
		user, err := s.provider.GetUser(ctx, userID)
		if err != nil {
			return errors.NewAuthProviderError("get user", err)
		}
		email = user.Email
	}

	if err := validation.ValidatePasswordPolicy(req.NewPassword, req.CurrentPassword, email); err != nil {
		s.audit(ctx, userID, ip, userAgent, securitymodels.EventPasswordChangeFailed, securitymodels.SeverityInfo, "policy")
		appErr := errors.Wrap(err, errors.ErrCodePasswordPolicy, "New password does not meet the password policy")
		var violation *validation.PolicyViolation
		if stderrors.As(err, &violation) {
			appErr = appErr.WithDetail("rules", violation.Rules)
		}
		return appErr
	}

	breached, err := s.breaches.BreachCount(ctx, req.NewPassword)
	if err != nil {
		// HIBP недоступен: пропускаем проверку
		s.logger.Warn("Breach check unavailable, skipping", zap.String("user_id", userID), zap.Error(err))
	} else if breached > 0 {
		s.audit(ctx, userID, ip, userAgent, securitymodels.EventPasswordChangeFailed, securitymodels.SeverityInfo, "breached_password")
		return errors.New(errors.ErrCodePasswordBreached, "This password has appeared in a data breach; choose another one").
			WithDetail("breach_count", breached)
	}

	if _, err := s.provider.SignInWithPassword(ctx, email, req.CurrentPassword); err != nil {
		if stderrors.Is(err, supabase.ErrInvalidCredentials) {
			s.audit(ctx, userID, ip, userAgent, securitymodels.EventPasswordChangeFailed, securitymodels.SeverityWarning, "invalid_current_password")
			return errors.New(errors.ErrCodeInvalidCredentials, "Current password is incorrect").
				WithDetail("attempts_left", s.cfg.MaxAttempts-count)
		}
		return errors.NewAuthProviderError("verify current password", err)
	}

	if err := s.provider.UpdateUserPassword(ctx, userID, req.NewPassword); err != nil {
		s.audit(ctx, userID, ip, userAgent, securitymodels.EventPasswordChangeFailed, securitymodels.SeverityWarning, "provider_error")
		return errors.NewAuthProviderError("update password", err)
	}

	s.audit(ctx, userID, ip, userAgent, securitymodels.EventPasswordChanged, securitymodels.SeverityInfo, "")
	s.logger.Info("Password changed", zap.String("user_id", userID))
	return nil
}

func (s *passwordService) audit(ctx context.Context, userID, ip, userAgent, eventType string, severity securitymodels.Severity, reason string) {
	if s.security == nil {
		return
	}
	meta := map[string]interface{}{}
	if reason != "" {
		meta["reason"] = reason
	}
	if err := s.security.Record(ctx, securitymodels.Event{
		UserID:    userID,
		EventType: eventType,
		Severity:  severity,
		IPAddress: ip,
		UserAgent: userAgent,
		Metadata:  meta,
	}); err != nil {
		s.logger.Warn("Failed to record password event", zap.String("event_type", eventType), zap.Error(err))
	}
}
