// Package scheduler runs the periodic reconciliation jobs: the
// pending-assignment sweep, the inactive-agent sweep, the comprehensive
// validation sweep, and the deadline-warning sweep. Each job is a full pass
// over matching entities with no cursor state, so reruns are idempotent.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Fluffaro/desk-cartel/internal/observability"
)

// Job is one named periodic sweep.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Scheduler owns a set of jobs, each driven by its own ticker. A job runs
// synchronously on its own loop goroutine, so a sweep that outlasts its
// interval simply delays the next run; ticks that fire meanwhile coalesce.
// Sweeps of the same kind therefore never overlap, which keeps duplicate
// notification work out even though the sweeps themselves are idempotent.
type Scheduler struct {
	jobs    []Job
	logger  *zap.Logger
	metrics *observability.Metrics
	wg      sync.WaitGroup
}

// New creates a scheduler over the given jobs.
func New(logger *zap.Logger, metrics *observability.Metrics, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{jobs: jobs, logger: logger, metrics: metrics}
}

// Start launches one goroutine per job. Cancel ctx to stop; Wait blocks until
// all loops have exited.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.logger.Warn("skipping job with non-positive interval", zap.String("job", job.Name))
			continue
		}
		s.wg.Add(1)
		go s.runLoop(ctx, job)
	}
}

// Wait blocks until all job loops have stopped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.logger.Info("scheduler job started",
		zap.String("job", job.Name),
		zap.Duration("interval", job.Interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler job stopped", zap.String("job", job.Name))
			return
		case <-ticker.C:
			s.metrics.RecordSweep(job.Name)
			start := time.Now()
			job.Run(ctx)
			s.logger.Debug("sweep finished",
				zap.String("job", job.Name),
				zap.Duration("took", time.Since(start)))
		}
	}
}
