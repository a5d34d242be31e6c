package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/contractforge/internal/registry"
)

// Sweeper runs the registry expiry sweep on a fixed cadence via gocron.
type Sweeper struct {
	scheduler gocron.Scheduler
	registry  *registry.Registry

	mu  sync.Mutex
	job gocron.Job
}

// NewSweeper creates a sweeper firing every interval.
func NewSweeper(reg *registry.Registry, interval time.Duration) (*Sweeper, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	sw := &Sweeper{
		scheduler: s,
		registry:  reg,
	}
	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sw.sweep),
		gocron.WithName("expiry-sweep"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep job: %w", err)
	}
	sw.job = job
	return sw, nil
}

// Start begins the scheduler.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("Starting expiry sweeper")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop(ctx context.Context) error {
	slog.Info("Stopping expiry sweeper")
	return s.scheduler.Shutdown()
}

// Reschedule replaces the sweep job with one firing every interval.
func (s *Sweeper) Reschedule(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.scheduler.Update(
		s.job.ID(),
		gocron.DurationJob(interval),
		gocron.NewTask(s.sweep),
		gocron.WithName("expiry-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to update sweep job: %w", err)
	}
	s.job = job
	slog.Info("Sweep interval updated", slog.Duration("interval", interval))
	return nil
}

// sweep is called by gocron on each tick.
func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	evicted := s.registry.Sweep(ctx)
	if evicted > 0 {
		slog.Debug("Sweep tick completed", "evicted", evicted)
	}
}
