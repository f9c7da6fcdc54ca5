package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SlotGenerator tops up generated slots for every approved counselor.
type SlotGenerator interface {
	GenerateForAll(ctx context.Context) (int, error)
}

// Scheduler runs background jobs on a cron spec.
type Scheduler struct {
	cron      *cron.Cron
	generator SlotGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

func NewScheduler(generator SlotGenerator, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		generator: generator,
		timeout:   5 * time.Minute,
		logger:    logger,
	}
}

// Start registers the slot top-up job under spec, runs it once right away and
// starts the cron loop. An empty spec leaves the scheduler idle.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		s.logger.Info("Slot top-up disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.generateSlots(ctx) }); err != nil {
		return fmt.Errorf("schedule slot top-up %q: %w", spec, err)
	}

	s.logger.Info("Starting background scheduler", zap.String("slot_topup", spec))
	go s.generateSlots(ctx)
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) generateSlots(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	created, err := s.generator.GenerateForAll(ctx)
	if err != nil {
		s.logger.Error("Failed to generate slots", zap.Error(err))
		return
	}
	s.logger.Info("Slot generation completed",
		zap.Int("slots_created", created),
		zap.Duration("duration", time.Since(start)),
	)
}
