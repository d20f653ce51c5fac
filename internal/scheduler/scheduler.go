package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher is implemented by greenhouse.Controller.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refreshes the dashboard's file list so that a new
// daily file shows up without a restart.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(target Refresher, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		target:    target,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// An interval of zero disables refreshing.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		slog.Info("scheduler: refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	slog.Info("scheduler: started", "interval", s.interval)
	return nil
}

func (s *Scheduler) run() {
	slog.Debug("scheduler: refreshing file list")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.target.Refresh(ctx)
	switch {
	case err == nil:
		slog.Debug("scheduler: refresh done")
	case errors.Is(err, context.Canceled):
	default:
		slog.Warn("scheduler: refresh failed", "error", err)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
