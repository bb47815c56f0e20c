// Package scheduler drives the periodic pipeline jobs.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"trendpulse/internal/observability"
)

// Jobs is the set of periodic operations the scheduler drives.
type Jobs interface {
	RunFetchCycle(ctx context.Context) error
	RunTrendCycle(ctx context.Context) error
	RunRetention(ctx context.Context) error
}

// Config holds the job cadence.
type Config struct {
	FetchInterval time.Duration
	TrendInterval time.Duration

	// RetentionHourUTC is the UTC hour at which the daily retention sweep
	// fires.
	RetentionHourUTC int
}

// Scheduler owns one goroutine per job. A slow run never overlaps the next
// tick of the same job, and a failing job never takes the others down.
type Scheduler struct {
	jobs   Jobs
	cfg    Config
	logger *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	fetchRunning     atomic.Bool
	trendRunning     atomic.Bool
	retentionRunning atomic.Bool
}

// New creates a scheduler over the given jobs.
func New(jobs Jobs, cfg Config, logger *zerolog.Logger) *Scheduler {
	if cfg.FetchInterval <= 0 {
		cfg.FetchInterval = time.Hour
	}

	if cfg.TrendInterval <= 0 {
		cfg.TrendInterval = 6 * time.Hour
	}

	if cfg.RetentionHourUTC < 0 || cfg.RetentionHourUTC > 23 {
		cfg.RetentionHourUTC = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		jobs:   jobs,
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the job loops. The fetch and trend jobs run once
// immediately so a fresh deployment has data before the first tick.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.tickerLoop("fetch", s.cfg.FetchInterval, &s.fetchRunning, s.jobs.RunFetchCycle, true)

	s.wg.Add(1)
	go s.tickerLoop("trend", s.cfg.TrendInterval, &s.trendRunning, s.jobs.RunTrendCycle, true)

	s.wg.Add(1)
	go s.retentionLoop()
}

// Stop cancels the loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// TriggerFetch runs a fetch cycle on demand, unless one is already running.
// It reports whether the run was started.
func (s *Scheduler) TriggerFetch(ctx context.Context) bool {
	if !s.fetchRunning.CompareAndSwap(false, true) {
		return false
	}

	go func() {
		defer s.fetchRunning.Store(false)

		s.runJob(ctx, "fetch", s.jobs.RunFetchCycle)
	}()

	return true
}

func (s *Scheduler) tickerLoop(name string, interval time.Duration, running *atomic.Bool, job func(context.Context) error, immediate bool) {
	defer s.wg.Done()

	if immediate {
		s.guardedRun(name, running, job)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.guardedRun(name, running, job)
		}
	}
}

// retentionLoop fires once per day at the configured UTC hour.
func (s *Scheduler) retentionLoop() {
	defer s.wg.Done()

	for {
		wait := untilNextHour(time.Now().UTC(), s.cfg.RetentionHourUTC)

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(wait):
			s.guardedRun("retention", &s.retentionRunning, s.jobs.RunRetention)
		}
	}
}

// untilNextHour computes the wait until the next occurrence of the given UTC
// hour.
func untilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}

func (s *Scheduler) guardedRun(name string, running *atomic.Bool, job func(context.Context) error) {
	if !running.CompareAndSwap(false, true) {
		s.logger.Warn().Str("job", name).Msg("previous run still in progress, skipping tick")
		observability.SchedulerJobRuns.WithLabelValues(name, "skipped").Inc()

		return
	}
	defer running.Store(false)

	s.runJob(s.ctx, name, job)
}

func (s *Scheduler) runJob(ctx context.Context, name string, job func(context.Context) error) {
	started := time.Now()

	if err := job(ctx); err != nil {
		s.logger.Error().Err(err).Str("job", name).Msg("job failed")
		observability.SchedulerJobRuns.WithLabelValues(name, "error").Inc()

		return
	}

	observability.SchedulerJobRuns.WithLabelValues(name, "ok").Inc()

	s.logger.Debug().
		Str("job", name).
		Dur("took", time.Since(started)).
		Msg("job finished")
}
