// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
)

// Job names used in logs and metrics.
const (
	ExpireRequestsJob   = "expire_requests"
	RefreshInstagramJob = "refresh_instagram"
)

// RequestExpirer closes open requests whose expiry has passed.
type RequestExpirer interface {
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
}

// InstagramRefresher renews Instagram tokens that are close to expiry.
type InstagramRefresher interface {
	RefreshExpiring(ctx context.Context, now time.Time) (int, error)
}

// Scheduler wraps a cron runner with logging and metrics for each job.
type Scheduler struct {
	cron    *cron.Cron
	logger  *log.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
}

// New creates a Scheduler. m may be nil.
func New(logger *log.Logger, m *metrics.Metrics) *Scheduler {
	l := logger.WithPrefix("jobs")
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cronLogger{l}), cron.WithChain(cron.Recover(cronLogger{l}), cron.SkipIfStillRunning(cronLogger{l}))),
		logger:  l,
		metrics: m,
		timeout: time.Minute,
		now:     time.Now,
	}
}

// Add registers fn under name on the given cron spec.
func (s *Scheduler) Add(spec, name string, fn func(ctx context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, func() { s.Run(name, fn) }); err != nil {
		return fmt.Errorf("schedule %s on %q: %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// AddExpireRequests schedules the request expiry sweep.
func (s *Scheduler) AddExpireRequests(spec string, repo RequestExpirer) error {
	return s.Add(spec, ExpireRequestsJob, func(ctx context.Context) error {
		n, err := repo.CloseExpired(ctx, s.now())
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info("closed expired requests", "count", n)
		}
		return nil
	})
}

// AddRefreshInstagram schedules the Instagram token renewal sweep.
func (s *Scheduler) AddRefreshInstagram(spec string, r InstagramRefresher) error {
	return s.Add(spec, RefreshInstagramJob, func(ctx context.Context) error {
		n, err := r.RefreshExpiring(ctx, s.now())
		if n > 0 {
			s.logger.Info("renewed instagram tokens", "count", n)
		}
		return err
	})
}

// Run executes fn once with a timeout and records the outcome.
func (s *Scheduler) Run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	s.metrics.JobRun(name, time.Since(start), err == nil)
	if err != nil {
		s.logger.Error("job failed", "job", name, "err", err)
	}
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("jobs still running at shutdown")
	}
}

// cronLogger adapts a charm logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
