// Package collector runs the periodic collection tasks: news scraping,
// weather snapshots, fuel prices, alert generation, and retention
// cleanup. Each task runs on its own interval off the shared clock, so
// tests can drive the schedule with a fake clock.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
)

// Task is one periodic collection job.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler fans tasks out onto per-task tickers and records run
// outcomes. Every task also runs once at startup.
type Scheduler struct {
	tasks   []Task
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// NewScheduler creates a Scheduler for the given tasks.
func NewScheduler(tasks []Task, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{tasks: tasks, logger: logger, metrics: metrics}
}

// CheckReadiness returns nil once at least one task has completed a run.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no collection task has completed yet")
	}
	return nil
}

// Run executes all tasks on their intervals until the context is
// cancelled. Blocks until every task loop has stopped.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", "tasks", len(s.tasks))
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	var wg sync.WaitGroup
	for _, task := range s.tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			s.runLoop(ctx, t)
		}(task)
	}
	wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, t Task) {
	s.runOnce(ctx, t)

	ticker := domain.Clock().NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("task loop stopping", "task", t.Name, "reason", ctx.Err())
			return
		case <-ticker.Chan():
			s.runOnce(ctx, t)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}
	start := domain.Clock().Now()

	if err := t.Run(ctx); err != nil {
		s.metrics.CollectorErrors.WithLabelValues(t.Name).Inc()
		s.logger.Error("task run failed", "task", t.Name, "error", err)
		return
	}

	s.metrics.CollectorRuns.WithLabelValues(t.Name).Inc()
	s.metrics.CollectorDuration.WithLabelValues(t.Name).Observe(domain.Clock().Since(start).Seconds())
	s.ready.Store(true)
}
