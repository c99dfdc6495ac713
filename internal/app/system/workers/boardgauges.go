// internal/app/system/workers/boardgauges.go
package workers

import (
	"context"
	"sync"
	"time"

	metricsstore "github.com/felix-ong/volunteer-board/internal/app/store/metrics"
	"github.com/felix-ong/volunteer-board/internal/app/system/metrics"
	"github.com/felix-ong/volunteer-board/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// CountFunc gathers the board totals.
type CountFunc func(ctx context.Context) metricsstore.Counts

// BoardGauges is a background worker that refreshes the job and user gauges.
type BoardGauges struct {
	count    CountFunc
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewBoardGauges creates a new gauge worker.
//
// Parameters:
//   - count: source of the totals (usually metricsstore.FetchBoardCounts)
//   - logger: zap logger for logging
//   - interval: how often to refresh (e.g., 1 minute)
func NewBoardGauges(count CountFunc, logger *zap.Logger, interval time.Duration) *BoardGauges {
	return &BoardGauges{
		count:    count,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start refreshes once and then begins the background loop.
func (w *BoardGauges) Start() {
	w.Refresh()
	w.wg.Add(1)
	go w.run()
	w.log.Info("board gauge worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *BoardGauges) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("board gauge worker stopped")
	})
}

func (w *BoardGauges) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Refresh()
		}
	}
}

// Refresh gathers the totals and publishes them.
func (w *BoardGauges) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	c := w.count(ctx)
	metrics.SetJobCounts(c.ApprovedJobs, c.PendingJobs, c.UnapprovedJobs, c.Registrations)
	for role, n := range c.UsersByRole {
		metrics.SetUserCount(role, n)
	}
	w.log.Debug("board gauges refreshed",
		zap.Int64("approved", c.ApprovedJobs),
		zap.Int64("pending", c.PendingJobs))
}
