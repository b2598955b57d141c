package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/nextops/aws-services/internal/logging"
	"github.com/nextops/aws-services/internal/workflow"
)

// Syncer is the part of the workflow the scheduler drives.
type Syncer interface {
	RunSync(ctx context.Context) (workflow.SyncReport, error)
}

// Scheduler re-runs the sync on a cron spec (seconds field enabled).
// A tick that fires while a run is still in flight is skipped.
type Scheduler struct {
	cron    *cron.Cron
	syncer  Syncer
	logger  *logging.Logger
	running atomic.Bool
	skipped atomic.Int64
}

func NewScheduler(syncer Syncer, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		syncer: syncer,
		logger: logger,
	}
}

// Start registers the sync job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to create cron job: %w", err)
	}

	s.logger.Infof("schedule", "cron scheduler started spec=%q", spec)
	s.cron.Start()
	return nil
}

// Stop halts future ticks and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("schedule", "cron scheduler stopped")
}

// RunOnce executes one sync unless another is already running. It reports
// whether a run took place.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Warn("schedule", "previous sync still running, skipping tick")
		return false
	}
	defer s.running.Store(false)

	report, err := s.syncer.RunSync(ctx)
	switch {
	case errors.Is(err, workflow.ErrNotConnected):
		s.logger.Errorf("schedule", "scheduled sync aborted run_id=%s", report.RunID)
	case err != nil:
		s.logger.Errorf("schedule", "scheduled sync failed run_id=%s error=%q", report.RunID, err.Error())
	default:
		s.logger.Infof("schedule", "scheduled sync done run_id=%s summary=%q", report.RunID, report.String())
	}
	return true
}

// Skipped counts ticks dropped because a run was in flight.
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}
