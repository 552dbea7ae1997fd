package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	customerdomain "github.com/smallbiznis/rentaldesk/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCustomers only implements the sweep; other methods panic if called.
type fakeCustomers struct {
	customerdomain.Service

	mu    sync.Mutex
	calls []time.Time
	err   error
	block bool
}

func (f *fakeCustomers) SweepStaleQuotations(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, now)
	err, block := f.err, f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return 1, err
}

func (f *fakeCustomers) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestScheduler(t *testing.T, customers *fakeCustomers, cfg Config) (*Scheduler, *clock.FakeClock, *prometheus.Registry) {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC))
	reg := prometheus.NewRegistry()
	sched, err := New(Params{
		Log:       zap.NewNop(),
		Clock:     clk,
		Customers: customers,
		Metrics:   obsmetrics.New(reg),
		Config:    cfg,
	})
	require.NoError(t, err)
	return sched, clk, reg
}

func TestRunOnceSweepsWithSchedulerClock(t *testing.T) {
	customers := &fakeCustomers{}
	sched, clk, reg := newTestScheduler(t, customers, Config{})

	require.NoError(t, sched.RunOnce(context.Background()))
	require.Equal(t, 1, customers.callCount())
	assert.Equal(t, clk.Now(), customers.calls[0])

	clk.Advance(24 * time.Hour)
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, clk.Now(), customers.calls[1])

	count, err := testutil.GatherAndCount(reg, "rentaldesk_scheduler_job_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunOnceWrapsJobErrors(t *testing.T) {
	customers := &fakeCustomers{err: errors.New("db down")}
	sched, _, _ := newTestScheduler(t, customers, Config{})

	err := sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobSweepCustomers)
	assert.Contains(t, err.Error(), "db down")
}

func TestRunOnceTreatsTimeoutAsSoft(t *testing.T) {
	customers := &fakeCustomers{block: true}
	sched, _, _ := newTestScheduler(t, customers, Config{JobTimeout: 10 * time.Millisecond})

	assert.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, customers.callCount())
}

func TestDisabledJobsAreSkipped(t *testing.T) {
	customers := &fakeCustomers{}
	sched, _, _ := newTestScheduler(t, customers, Config{EnabledJobs: []string{"something_else"}})

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 0, customers.callCount())

	sched, _, _ = newTestScheduler(t, customers, Config{EnabledJobs: []string{"SWEEP_CUSTOMERS"}})
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, customers.callCount())
}

func TestRunForeverRunsAfterStartupDelayAndStops(t *testing.T) {
	customers := &fakeCustomers{}
	sched, _, _ := newTestScheduler(t, customers, Config{
		StartupDelay: 5 * time.Millisecond,
		RunInterval:  time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.RunForever(ctx)
	}()

	require.Eventually(t, func() bool { return customers.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 1, customers.callCount())
}

func TestRunForeverStopsDuringStartupDelay(t *testing.T) {
	customers := &fakeCustomers{}
	sched, _, _ := newTestScheduler(t, customers, Config{StartupDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sched.RunForever(ctx)
	assert.Equal(t, 0, customers.callCount())
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 24*time.Hour, cfg.RunInterval)
	assert.Equal(t, 12*time.Hour, cfg.lockTTL())
	assert.Equal(t, time.Duration(0), cfg.StartupDelay)

	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
