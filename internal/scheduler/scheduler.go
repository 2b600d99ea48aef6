package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weatherpi/internal/leds"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 5 * time.Minute

// Runner is a refresh cycle.
type Runner interface {
	Run(ctx context.Context) (leds.Frame, error)
}

// Scheduler periodically runs the refresh cycle.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. Each run is bounded by timeout when it is positive.
func New(runner Runner, interval, timeout time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the refresh job and starts the underlying scheduler. The first run
// happens immediately; a run still in progress when the next tick fires causes that
// tick to be skipped.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runOnce)
	if err != nil {
		return err
	}

	slog.Info("scheduler started", "interval", s.interval)
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if _, err := s.runner.Run(ctx); err != nil {
		slog.Warn("scheduler: refresh failed", "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("scheduler: refresh done", "duration", time.Since(start))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
