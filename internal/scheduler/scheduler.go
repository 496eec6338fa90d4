package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Sweeper drops per-user state that has been abandoned
type Sweeper interface {
	SweepIdle(maxIdle time.Duration) int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	maxIdle   time.Duration
	log       zerolog.Logger
}

// New creates a new scheduler instance
func New(sweeper Sweeper, interval, maxIdle time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		interval:  interval,
		maxIdle:   maxIdle,
		log:       logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() { s.sweep() }); err != nil {
		return fmt.Errorf("failed to schedule idle sweep: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info().Dur("interval", s.interval).Dur("max_idle", s.maxIdle).Msg("scheduler started")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunNow performs a sweep immediately
func (s *Scheduler) RunNow() int {
	return s.sweep()
}

func (s *Scheduler) sweep() int {
	removed := s.sweeper.SweepIdle(s.maxIdle)
	s.log.Debug().Int("removed", removed).Msg("idle sweep finished")
	return removed
}
