package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler triggers jobs on fixed intervals.
//
// Single process only: the runner's singleflight guard keeps a timer tick and an
// HTTP trigger from running the same job twice, but nothing coordinates across
// processes.
type Scheduler struct {
	runner     *Runner
	intervals  map[string]time.Duration
	runOnStart bool
	logger     *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewScheduler creates a scheduler for the runner's jobs.
func NewScheduler(runner *Runner, cfg Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		intervals:  cfg.Intervals(),
		runOnStart: cfg.RunOnStart,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// Start launches one loop per job with a positive interval. It does not block.
func (s *Scheduler) Start(ctx context.Context) {
	for name, every := range s.intervals {
		if every <= 0 || !s.runner.Has(name) {
			continue
		}
		s.logger.Info("Scheduling job", zap.String("job", name), zap.Duration("interval", every))

		s.wg.Add(1)
		go s.loop(ctx, name, every)
	}
}

// Stop signals every loop to exit and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration) {
	defer s.wg.Done()

	if s.runOnStart {
		s.tick(ctx, name)
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx, name)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, name string) {
	if s.runner.Running(name) {
		s.logger.Debug("Skipping tick, job still running", zap.String("job", name))
		return
	}
	// Errors are recorded in the job status and logged by the runner.
	_, _ = s.runner.Run(ctx, name)
}
