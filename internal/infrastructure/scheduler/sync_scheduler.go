package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// Processor is one reconciliation processor the scheduler drives
type Processor interface {
	Run(ctx context.Context) (syncdomain.Summary, error)
}

// Entry binds a processor to its sync type and run interval
type Entry struct {
	Type      syncdomain.Type
	Interval  time.Duration
	Processor Processor
}

// SyncScheduler runs each registered processor on its own interval. One
// goroutine per entry; the run lease inside the processors keeps
// overlapping instances from double-processing.
type SyncScheduler struct {
	entries []Entry
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a scheduler over the given entries
func NewSyncScheduler(entries []Entry, logger *zap.Logger) *SyncScheduler {
	return &SyncScheduler{
		entries: entries,
		logger:  logger.Named("scheduler"),
	}
}

// Start starts one loop per entry. Each loop runs its processor once
// immediately, then on every interval tick.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, entry := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, entry)
	}

	s.logger.Info("Sync scheduler started",
		zap.Int("entries", len(s.entries)),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for in-flight runs
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// loop drives one processor on its interval
func (s *SyncScheduler) loop(ctx context.Context, entry Entry) {
	defer s.wg.Done()

	s.logger.Debug("Sync loop started",
		zap.String("sync_type", string(entry.Type)),
		zap.Duration("interval", entry.Interval),
	)

	s.runOnce(ctx, entry)

	ticker := time.NewTicker(entry.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sync loop stopping", zap.String("sync_type", string(entry.Type)))
			return
		case <-ticker.C:
			s.runOnce(ctx, entry)
		}
	}
}

// runOnce executes a single processor run and logs its outcome
func (s *SyncScheduler) runOnce(ctx context.Context, entry Entry) {
	summary, err := entry.Processor.Run(ctx)
	switch {
	case errors.Is(err, syncdomain.ErrRunInProgress):
		s.logger.Debug("Sync run skipped, lease held elsewhere",
			zap.String("sync_type", string(entry.Type)),
		)
	case errors.Is(err, context.Canceled):
		// Shutdown, the loop exits on the next select
	case err != nil:
		s.logger.Error("Sync run failed",
			zap.String("sync_type", string(entry.Type)),
			zap.Error(err),
		)
	default:
		s.logger.Info("Sync run finished",
			zap.String("sync_type", string(entry.Type)),
			zap.Int("processed", summary.Processed),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed),
		)
	}
}
