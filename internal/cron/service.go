package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/metrics"
)

const defaultInterval = time.Hour

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service drives the registered jobs on a fixed cadence. A shared lock keeps
// a fleet of workers from running the same cycle concurrently; a replica that
// loses the race simply sits the cycle out. One failing job never blocks the
// jobs after it.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes a cycle immediately and then on every tick until the context
// is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.runCycle(ctx); err != nil {
			s.logg.Error(ctx, "scheduled run failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !held {
		s.logg.Info(ctx, "another cron instance holds the lock, skipping cycle")
		return nil
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "failed to release cron lock", err)
		}
	}()

	s.logg.Info(ctx, "cron cycle starting")
	for _, job := range s.registry.Jobs() {
		jobCtx := s.logg.WithField(ctx, "job", job.Name())
		started := time.Now()
		err := job.Run(jobCtx)
		elapsed := time.Since(started)

		s.metrics.ObserveDuration(job.Name(), elapsed)
		jobCtx = s.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
		if err != nil {
			s.metrics.IncFailure(job.Name())
			s.logg.Error(jobCtx, "job failed", err)
			continue
		}
		s.metrics.IncSuccess(job.Name())
		s.logg.Info(jobCtx, "job completed")
	}
	s.logg.Info(ctx, "cron cycle complete")
	return nil
}
