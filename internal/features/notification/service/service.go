package service

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/pagination"
	"social-hub-backend/internal/features/notification/models"
	"social-hub-backend/internal/features/notification/repository"
	securitymodels "social-hub-backend/internal/features/security/models"
)

type NotificationService interface {
	Create(ctx context.Context, req models.CreateRequest, source string) (*models.Notification, error)
	List(ctx context.Context, page pagination.Page) (*models.ListResponse, error)
	MarkRead(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context) (int64, error)
	NotifyAdmins(ctx context.Context, title, message string, severity securitymodels.Severity, source string) error
}

type notificationService struct {
	repo   repository.NotificationRepository
	logger *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		logger: logger,
	}
}

func (s *notificationService) Create(ctx context.Context, req models.CreateRequest, source string) (*models.Notification, error) {
	if req.Severity == "" {
		req.Severity = string(securitymodels.SeverityInfo)
	}
	if source == "" {
		source = "system"
	}

	n := &models.Notification{
		Title:    req.Title,
		Message:  req.Message,
		Severity: req.Severity,
		Source:   source,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification", zap.String("title", req.Title), zap.Error(err))
		return nil, errors.NewDatabaseError("create notification", err)
	}

	s.logger.Info("Admin notification created",
		zap.Int64("notification_id", n.ID),
		zap.String("severity", n.Severity),
		zap.String("source", n.Source),
	)
	return n, nil
}

// NotifyAdmins используется журналом безопасности
func (s *notificationService) NotifyAdmins(ctx context.Context, title, message string, severity securitymodels.Severity, source string) error {
	_, err := s.Create(ctx, models.CreateRequest{Title: title, Message: message, Severity: string(severity)}, source)
	return err
}

func (s *notificationService) List(ctx context.Context, page pagination.Page) (*models.ListResponse, error) {
	items, total, err := s.repo.List(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, errors.NewDatabaseError("list notifications", err)
	}

	unread, err := s.repo.UnreadCount(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("count unread notifications", err)
	}

	res := pagination.NewResult(items, total, page)
	return &models.ListResponse{
		Items:       res.Items,
		Total:       res.Total,
		Page:        res.Page,
		PageSize:    res.PageSize,
		HasMore:     res.HasMore,
		UnreadCount: unread,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotificationNotFound) {
			return errors.NewNotFoundError("notification", id)
		}
		return errors.NewDatabaseError("mark notification read", err)
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context) (int64, error) {
	n, err := s.repo.UnreadCount(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("count unread notifications", err)
	}
	return n, nil
}
