package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/metrics"
)

const usageWorkerName = "usage_aggregation"

// UsageAggregator сводит счетчики за вчера и сегодня в resource_usage
type UsageAggregator interface {
	AggregateRecent(ctx context.Context) error
}

type UsageCron struct {
	spec    string
	svc     UsageAggregator
	timeout time.Duration
	logger  *zap.Logger
}

func NewUsageCron(spec string, svc UsageAggregator, logger *zap.Logger) *UsageCron {
	return &UsageCron{
		spec:    spec,
		svc:     svc,
		timeout: 2 * time.Minute,
		logger:  logger.With(zap.String("worker", usageWorkerName)),
	}
}

// Run запускает агрегацию сразу и далее по расписанию до отмены ctx
func (u *UsageCron) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(u.spec, func() { u.runOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid usage cron spec %q: %w", u.spec, err)
	}

	u.logger.Info("Starting usage aggregation cron", zap.String("spec", u.spec))
	u.runOnce(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	u.logger.Info("Stopped usage aggregation cron")
	return nil
}

func (u *UsageCron) runOnce(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, u.timeout)
	defer cancel()

	start := time.Now()
	if err := u.svc.AggregateRecent(ctx); err != nil {
		u.logger.Error("Usage aggregation failed", zap.Error(err))
		metrics.RecordWorkerMessage(usageWorkerName, "error")
		return
	}
	metrics.RecordWorkerMessage(usageWorkerName, "ok")
	u.logger.Info("Usage aggregated", zap.Duration("took", time.Since(start)))
}
