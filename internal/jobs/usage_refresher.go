package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/labanca/listero/internal/metrics"
)

// UsageRefresher periodically recomputes the daily usage rollup in Postgres
// and emits a NATS event when the recalculation completes. The rollup backs
// the capacity view, so submit-path reads stay cheap.
type UsageRefresher struct {
	logger    *zap.Logger
	db        DBExecutor // small interface wrapper over pgxpool.Pool
	publisher EventPublisher
	interval  time.Duration
	stopCh    chan struct{}
}

// DBExecutor defines the minimal subset of pgxpool.Pool needed for execution.
type DBExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EventPublisher announces completed refresh cycles.
type EventPublisher interface {
	PublishUsageRefreshed(ctx context.Context, refreshedAt time.Time, took time.Duration) error
}

// NewUsageRefresher constructs a background job that runs periodically.
func NewUsageRefresher(logger *zap.Logger, db DBExecutor, pub EventPublisher, interval time.Duration) *UsageRefresher {
	return &UsageRefresher{
		logger:    logger,
		db:        db,
		publisher: pub,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the usage refresh loop.
func (r *UsageRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("usage_refresher.started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.stopCh:
			r.logger.Info("usage_refresher.stopped (manual stop)")
			return
		case <-ctx.Done():
			r.logger.Info("usage_refresher.stopped (context canceled)")
			return
		}
	}
}

// Stop gracefully halts the refresher.
func (r *UsageRefresher) Stop() {
	close(r.stopCh)
}

// runOnce executes one refresh cycle.
func (r *UsageRefresher) runOnce(ctx context.Context) {
	start := time.Now()

	_, err := r.db.Exec(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY betting.daily_usage`)
	if err != nil {
		r.logger.Error("usage_refresher.refresh_failed", zap.Error(err))
		metrics.IncError("usage_refresher", "refresh_failed")
		return
	}

	refreshedAt := time.Now().UTC()
	metrics.SetLastUsageRefresh(refreshedAt)

	// Emit event for downstream reporting systems
	if err := r.publisher.PublishUsageRefreshed(ctx, refreshedAt, time.Since(start)); err != nil {
		r.logger.Warn("usage_refresher.publish_failed", zap.Error(err))
	}

	r.logger.Info("usage_refresher.success",
		zap.Duration("duration", time.Since(start)))
}
