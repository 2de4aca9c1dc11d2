package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// DefaultLeaseTTL bounds how long a crashed run can block its sync type
const DefaultLeaseTTL = 30 * time.Minute

// runner carries the plumbing every processor shares: the per-sync-type
// lease, the persisted run history, and the persisted per-row failure log.
type runner struct {
	lease    syncdomain.RunLease
	runs     syncdomain.RunRepository
	failures syncdomain.FailureLogRepository
	leaseTTL time.Duration
	logger   *zap.Logger
}

func newRunner(lease syncdomain.RunLease, runs syncdomain.RunRepository, failures syncdomain.FailureLogRepository, logger *zap.Logger) runner {
	return runner{
		lease:    lease,
		runs:     runs,
		failures: failures,
		leaseTTL: DefaultLeaseTTL,
		logger:   logger,
	}
}

// SetLeaseTTL overrides the default lease TTL for subsequent runs
func (r *runner) SetLeaseTTL(ttl time.Duration) {
	if ttl > 0 {
		r.leaseTTL = ttl
	}
}

// execute wraps one reconciliation run: acquire the lease, record the run,
// invoke the body, record the outcome, release the lease. Per-row failures
// are the body's concern; execute only fails a run at the top level.
func (r *runner) execute(ctx context.Context, syncType syncdomain.Type, body func(ctx context.Context) (syncdomain.Summary, error)) (syncdomain.Summary, error) {
	run, err := syncdomain.NewRun(syncType)
	if err != nil {
		return syncdomain.Summary{}, err
	}

	acquired, err := r.lease.Acquire(ctx, syncType, r.leaseTTL)
	if err != nil {
		return syncdomain.Summary{}, err
	}
	if !acquired {
		run.Skip()
		if saveErr := r.runs.Save(ctx, run); saveErr != nil {
			r.logger.Warn("Failed to persist skipped run", zap.Error(saveErr))
		}
		r.logger.Info("Sync run skipped, lease held elsewhere", zap.String("sync_type", syncType.String()))
		return syncdomain.Summary{}, syncdomain.ErrRunInProgress
	}
	defer func() {
		if releaseErr := r.lease.Release(context.WithoutCancel(ctx), syncType); releaseErr != nil {
			r.logger.Warn("Failed to release sync lease",
				zap.String("sync_type", syncType.String()),
				zap.Error(releaseErr),
			)
		}
	}()

	r.logger.Info("Sync run started", zap.String("sync_type", syncType.String()))

	summary, err := body(ctx)
	if err != nil {
		run.Fail(err)
		if saveErr := r.runs.Save(ctx, run); saveErr != nil {
			r.logger.Warn("Failed to persist failed run", zap.Error(saveErr))
		}
		r.logger.Error("Sync run failed",
			zap.String("sync_type", syncType.String()),
			zap.Error(err),
		)
		return summary, err
	}

	run.Complete(summary.Processed, summary.Skipped, summary.Failed)
	if saveErr := r.runs.Save(ctx, run); saveErr != nil {
		r.logger.Warn("Failed to persist completed run", zap.Error(saveErr))
	}

	r.logger.Info("Sync run completed",
		zap.String("sync_type", syncType.String()),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// recordFailure persists one per-row failure so an operator can replay the
// row later, and logs it
func (r *runner) recordFailure(ctx context.Context, syncType syncdomain.Type, externalRef, payload string, cause error) {
	entry := syncdomain.NewFailureLog(syncType, externalRef, payload, cause.Error())
	if err := r.failures.Save(ctx, entry); err != nil {
		r.logger.Error("Failed to persist failure log entry",
			zap.String("sync_type", syncType.String()),
			zap.String("external_ref", externalRef),
			zap.Error(err),
		)
	}

	r.logger.Error("Row failed during sync",
		zap.String("sync_type", syncType.String()),
		zap.String("external_ref", externalRef),
		zap.Error(cause),
	)
}
