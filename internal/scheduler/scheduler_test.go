package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJobs struct {
	fetch     atomic.Int32
	trend     atomic.Int32
	retention atomic.Int32
	fetchErr  error
	block     chan struct{}
}

func (c *countingJobs) RunFetchCycle(context.Context) error {
	c.fetch.Add(1)

	if c.block != nil {
		<-c.block
	}

	return c.fetchErr
}

func (c *countingJobs) RunTrendCycle(context.Context) error {
	c.trend.Add(1)

	return nil
}

func (c *countingJobs) RunRetention(context.Context) error {
	c.retention.Add(1)

	return nil
}

func newTestScheduler(jobs Jobs, cfg Config) *Scheduler {
	logger := zerolog.Nop()

	return New(jobs, cfg, &logger)
}

func TestStartRunsJobsImmediately(t *testing.T) {
	jobs := &countingJobs{}
	s := newTestScheduler(jobs, Config{
		FetchInterval: time.Hour,
		TrendInterval: time.Hour,
	})

	s.Start()

	require.Eventually(t, func() bool {
		return jobs.fetch.Load() >= 1 && jobs.trend.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	s.Stop()
}

func TestFailingJobDoesNotStopOthers(t *testing.T) {
	jobs := &countingJobs{fetchErr: errors.New("upstream down")}
	s := newTestScheduler(jobs, Config{
		FetchInterval: 20 * time.Millisecond,
		TrendInterval: 20 * time.Millisecond,
	})

	s.Start()

	require.Eventually(t, func() bool {
		return jobs.fetch.Load() >= 2 && jobs.trend.Load() >= 2
	}, time.Second, 10*time.Millisecond)

	s.Stop()
}

func TestTriggerFetchSkipsWhenRunning(t *testing.T) {
	jobs := &countingJobs{block: make(chan struct{})}
	s := newTestScheduler(jobs, Config{
		FetchInterval: time.Hour,
		TrendInterval: time.Hour,
	})

	started := s.TriggerFetch(context.Background())
	require.True(t, started)

	require.Eventually(t, func() bool {
		return jobs.fetch.Load() == 1
	}, time.Second, 5*time.Millisecond)

	assert.False(t, s.TriggerFetch(context.Background()), "overlapping trigger is rejected")

	close(jobs.block)

	require.Eventually(t, func() bool {
		return s.TriggerFetch(context.Background())
	}, time.Second, 5*time.Millisecond)

	s.Stop()
}

func TestUntilNextHour(t *testing.T) {
	now := time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, untilNextHour(now, 2))

	now = time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, untilNextHour(now, 2))

	now = time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 150*time.Minute, untilNextHour(now, 2))
}
