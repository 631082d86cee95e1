package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/features/usage/models"
	"social-hub-backend/internal/features/usage/repository"
)

const (
	DefaultReportDays = 7
	MaxReportDays     = 90
)

type UsageService interface {
	Aggregate(ctx context.Context, day time.Time) (map[string]int64, error)
	// AggregateRecent пересчитывает вчера и сегодня
	AggregateRecent(ctx context.Context) error
	Report(ctx context.Context, days int) (*models.Report, error)
}

type usageService struct {
	repo     repository.UsageRepository
	counters repository.Counters
	now      func() time.Time
	logger   *zap.Logger
}

func NewUsageService(repo repository.UsageRepository, counters repository.Counters, logger *zap.Logger) UsageService {
	return &usageService{
		repo:     repo,
		counters: counters,
		now:      time.Now,
		logger:   logger,
	}
}

// Aggregate сводит счетчики из базы и Redis за день и сохраняет в resource_usage
func (s *usageService) Aggregate(ctx context.Context, day time.Time) (map[string]int64, error) {
	metrics, err := s.repo.CountDay(ctx, day)
	if err != nil {
		return nil, errors.NewDatabaseError("count daily usage", err)
	}

	if s.counters != nil {
		live, err := s.counters.Get(ctx, day)
		if err != nil {
			s.logger.Warn("Failed to read usage counters", zap.String("day", models.DayKey(day)), zap.Error(err))
		}
		for metric, v := range live {
			metrics[metric] = v
		}
	}

	if err := s.repo.Upsert(ctx, day, metrics); err != nil {
		return nil, errors.NewDatabaseError("upsert daily usage", err)
	}

	s.logger.Debug("Usage aggregated", zap.String("day", models.DayKey(day)), zap.Any("metrics", metrics))
	return metrics, nil
}

func (s *usageService) AggregateRecent(ctx context.Context) error {
	today := s.now().UTC()
	for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
		if _, err := s.Aggregate(ctx, day); err != nil {
			return err
		}
	}
	return nil
}

func (s *usageService) Report(ctx context.Context, days int) (*models.Report, error) {
	if days <= 0 {
		days = DefaultReportDays
	}
	if days > MaxReportDays {
		days = MaxReportDays
	}

	since := s.now().UTC().AddDate(0, 0, -(days - 1))
	list, err := s.repo.ListSince(ctx, since)
	if err != nil {
		return nil, errors.NewDatabaseError("list usage", err)
	}
	if list == nil {
		list = []models.DailyUsage{}
	}

	return &models.Report{Days: list}, nil
}
