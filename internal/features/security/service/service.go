package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/features/security/models"
	"social-hub-backend/internal/features/security/repository"
)

// Recorder пишет событие в журнал безопасности
type Recorder interface {
	Record(ctx context.Context, event models.Event) error
}

type SecurityService interface {
	Recorder
	List(ctx context.Context, filter models.Filter, page pagination.Page) (pagination.Result[*models.Event], error)
}

// Notifier создает уведомление для администраторов
type Notifier interface {
	NotifyAdmins(ctx context.Context, title, message string, severity models.Severity, source string) error
}

type securityService struct {
	repo     repository.EventRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewSecurityService(repo repository.EventRepository, notifier Notifier, logger *zap.Logger) SecurityService {
	return &securityService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Record сохраняет событие. Для warning/critical дополнительно создается
// уведомление в админке; его сбой не отменяет запись события.
func (s *securityService) Record(ctx context.Context, event models.Event) error {
	if event.EventType == "" {
		return errors.NewValidationError("event_type", "is required")
	}
	if event.Severity == "" {
		event.Severity = models.SeverityInfo
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		s.logger.Error("Failed to record security event",
			zap.String("event_type", event.EventType),
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
		return errors.NewDatabaseError("insert security event", err)
	}

	if s.notifier != nil && event.Severity.IsHighSeverity() {
		title, message := describe(event)
		if err := s.notifier.NotifyAdmins(ctx, title, message, event.Severity, "security"); err != nil {
			s.logger.Warn("Failed to notify admins about security event",
				zap.Int64("event_id", event.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *securityService) List(ctx context.Context, filter models.Filter, page pagination.Page) (pagination.Result[*models.Event], error) {
	events, total, err := s.repo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return pagination.Result[*models.Event]{}, errors.NewDatabaseError("list security events", err)
	}
	return pagination.NewResult(events, total, page), nil
}

func describe(e models.Event) (string, string) {
	subject := e.UserID
	if subject == "" {
		subject = "unknown user"
	}
	switch e.EventType {
	case models.EventAdminAccessDenied:
		return "Admin access denied", fmt.Sprintf("Admin dashboard access was denied for %s.", subject)
	case models.EventAdminValidationFailed:
		return "Admin validation failed", fmt.Sprintf("Admin access could not be verified for %s.", subject)
	case models.EventRevokedSessionUsed:
		return "Revoked session used", fmt.Sprintf("A removed or signed-out device of %s made a request.", subject)
	case models.EventPasswordChangeFailed:
		return "Password change failed", fmt.Sprintf("A password change attempt for %s failed.", subject)
	default:
		return "Security event: " + e.EventType, fmt.Sprintf("Event %s recorded for %s.", e.EventType, subject)
	}
}
