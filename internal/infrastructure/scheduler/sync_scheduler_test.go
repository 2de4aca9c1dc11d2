package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

type countingProcessor struct {
	runs atomic.Int64
	err  error
}

func (p *countingProcessor) Run(ctx context.Context) (syncdomain.Summary, error) {
	p.runs.Add(1)
	return syncdomain.Summary{Processed: 1}, p.err
}

func TestSyncScheduler(t *testing.T) {
	t.Run("runs each entry immediately and on ticks", func(t *testing.T) {
		proc := &countingProcessor{}
		sched := NewSyncScheduler([]Entry{
			{Type: syncdomain.TypeTransfer, Interval: 20 * time.Millisecond, Processor: proc},
		}, zap.NewNop())

		require.NoError(t, sched.Start(context.Background()))
		time.Sleep(70 * time.Millisecond)

		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, sched.Stop(stopCtx))

		assert.GreaterOrEqual(t, proc.runs.Load(), int64(2))
	})

	t.Run("processor failure does not stop the loop", func(t *testing.T) {
		proc := &countingProcessor{err: assert.AnError}
		sched := NewSyncScheduler([]Entry{
			{Type: syncdomain.TypeOrder, Interval: 15 * time.Millisecond, Processor: proc},
		}, zap.NewNop())

		require.NoError(t, sched.Start(context.Background()))
		time.Sleep(50 * time.Millisecond)

		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, sched.Stop(stopCtx))

		assert.GreaterOrEqual(t, proc.runs.Load(), int64(2))
	})

	t.Run("start is idempotent", func(t *testing.T) {
		sched := NewSyncScheduler(nil, zap.NewNop())

		require.NoError(t, sched.Start(context.Background()))
		require.NoError(t, sched.Start(context.Background()))

		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, sched.Stop(stopCtx))
		require.NoError(t, sched.Stop(stopCtx))
	})
}
