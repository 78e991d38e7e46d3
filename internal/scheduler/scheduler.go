package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mkajic20/smart-charger-backend/internal/service"
)

const runTimeout = 2 * time.Minute

// Scheduler runs the in-use flag reconciler on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	reconciler service.Reconciler
	logger     *zap.Logger
	schedule   string
	entryID    cron.EntryID
	mu         sync.Mutex
	running    bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a scheduler. Five-field specs get a leading seconds field.
func New(schedule string, reconciler service.Reconciler, logger *zap.Logger) *Scheduler {
	if parts := strings.Fields(schedule); len(parts) == 5 {
		schedule = "0 " + schedule
	}
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		reconciler: reconciler,
		logger:     logger,
		schedule:   schedule,
	}
}

// Start registers the reconcile job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	id, err := s.cron.AddFunc(s.schedule, s.RunOnce)
	if err != nil {
		s.cancel()
		return fmt.Errorf("invalid cron expression '%s': %w", s.schedule, err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info("reconciler scheduled", zap.String("schedule", s.schedule), zap.Time("next", s.cron.Entry(id).Next))
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.running = false
	s.logger.Info("reconciler stopped")
}

// RunOnce executes a single reconcile pass.
func (s *Scheduler) RunOnce() {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, runTimeout)
	defer cancel()

	report, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		s.logger.Error("reconcile failed", zap.Error(err))
		return
	}
	if !report.Changed() {
		s.logger.Debug("reconcile found no drift")
	}
}
