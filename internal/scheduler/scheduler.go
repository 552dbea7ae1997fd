package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/rentaldesk/internal/clock"
	customerdomain "github.com/smallbiznis/rentaldesk/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	"github.com/smallbiznis/rentaldesk/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Customers customerdomain.Service
	Locker    *ratelimit.Locker   `optional:"true"`
	Metrics   *obsmetrics.Metrics `optional:"true"`
	Config    Config              `optional:"true"`
}

type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	customers customerdomain.Service
	locker    *ratelimit.Locker
	metrics   *obsmetrics.Metrics
}

type job struct {
	Name    string
	LockKey string
	Run     func(context.Context) error
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Customers == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		customers: p.Customers,
		locker:    p.Locker,
		metrics:   p.Metrics,
	}, nil
}

func (s *Scheduler) jobs() []job {
	return []job{
		{Name: JobSweepCustomers, LockKey: sweepLockKey, Run: s.SweepCustomersJob},
	}
}

// RunOnce runs every enabled job once, joining their errors.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	for _, j := range s.jobs() {
		if !s.isJobEnabled(j.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, j))
	}
	return err
}

func (s *Scheduler) runJob(parent context.Context, j job) error {
	log := s.log.With(zap.String("job", j.Name))

	if j.LockKey != "" && s.locker.Enabled() {
		token, ok, err := s.locker.TryLock(parent, j.LockKey, s.cfg.lockTTL())
		if err != nil {
			s.metrics.ObserveJob(j.Name, time.Now(), err)
			return fmt.Errorf("%s: acquire lock: %w", j.Name, err)
		}
		if !ok {
			log.Debug("job skipped, another replica holds the lock")
			s.metrics.ObserveJobSkipped(j.Name)
			return nil
		}
		defer func() {
			if err := s.locker.Release(context.Background(), j.LockKey, token); err != nil {
				log.Warn("failed to release job lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	err := j.Run(ctx)
	s.metrics.ObserveJob(j.Name, start, err)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out", zap.Duration("timeout", s.cfg.JobTimeout), zap.Error(err))
		return nil
	}
	return fmt.Errorf("%s: %w", j.Name, err)
}

// SweepCustomersJob deletes quotation customers past the retention window.
func (s *Scheduler) SweepCustomersJob(ctx context.Context) error {
	deleted, err := s.customers.SweepStaleQuotations(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	s.log.Debug("customer sweep finished", zap.Int64("deleted", deleted))
	return nil
}

// RunForever waits for the startup delay, then runs every RunInterval until
// ctx is done.
func (s *Scheduler) RunForever(ctx context.Context) {
	if s.cfg.StartupDelay > 0 {
		timer := time.NewTimer(s.cfg.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
