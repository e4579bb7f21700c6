// Package prefetch keeps a watch list of areas warm in the local store by
// refreshing them on a cron schedule.
package prefetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/jma-forecast/internal/forecast"
	"github.com/couchcryptid/jma-forecast/internal/observability"
)

// Refresher is implemented by forecast.Service.
type Refresher interface {
	Refresh(ctx context.Context, areaCode string) (forecast.Result, error)
}

// Scheduler refreshes each watched area in turn on every tick.
type Scheduler struct {
	cron    *cron.Cron
	svc     Refresher
	areas   []string
	logger  *slog.Logger
	metrics *observability.Metrics

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New parses schedule (standard five-field cron or @every / @hourly
// descriptors) and registers the refresh job. The job does not run until Start.
func New(schedule string, areas []string, svc Refresher, logger *slog.Logger, metrics *observability.Metrics) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		svc:     svc,
		areas:   areas,
		logger:  logger.With("component", "prefetch"),
		metrics: metrics,
	}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("parse prefetch schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in the background until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("prefetch scheduler started", "areas", s.areas)
}

// Stop cancels an in-flight run and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("prefetch scheduler stopped")
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	s.RunOnce(ctx)
}

// RunOnce refreshes every watched area sequentially and returns how many
// were not refreshed. A failed area is logged and counted and the run moves
// on; a done ctx ends the run and counts the remaining areas as failed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for i, area := range s.areas {
		if ctx.Err() != nil {
			return failed + len(s.areas) - i
		}
		res, err := s.svc.Refresh(ctx, area)
		if err != nil {
			failed++
			s.metrics.PrefetchRuns.WithLabelValues("error").Inc()
			s.logger.Warn("prefetch refresh failed", "area_code", area, "error", err)
			continue
		}
		s.metrics.PrefetchRuns.WithLabelValues("success").Inc()
		s.logger.Debug("prefetched area", "area_code", area, "records", len(res.Records))
	}
	return failed
}
