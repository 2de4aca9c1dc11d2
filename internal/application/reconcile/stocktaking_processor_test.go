package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stocksync/engine/internal/domain/stock"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

func newStockTakingProcessor(e *env, gateway syncdomain.LegacyGateway) *StockTakingProcessor {
	return NewStockTakingProcessor(
		gateway, e.entities, e.ledger, e.takings, e.warehouses,
		e.lease, e.runs, e.failures, zap.NewNop(),
	)
}

func TestStockTakingProcessor_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("physical count overwrites onhand", func(t *testing.T) {
		e := newEnv(t)
		warehouse := e.addWarehouse(t, "MAIN", 1)

		productID, err := e.entities.ResolveProduct(ctx, productRef("100", "SHIRT", "Shirt"))
		require.NoError(t, err)
		_, err = e.ledger.Adjust(ctx, productID, warehouse.ID, stock.QuantityOnhand, 10)
		require.NoError(t, err)
		_, err = e.ledger.Adjust(ctx, productID, warehouse.ID, stock.QuantityReserved, 2)
		require.NoError(t, err)

		gateway := &fakeGateway{
			takings: []syncdomain.StockTakingRow{{
				WarehouseExternalID: 1,
				TakenAt:             time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
				Items: []syncdomain.StockTakingRowItem{
					{Product: productRef("100", "SHIRT", "Shirt"), ObservedOnhand: 3},
				},
			}},
		}

		summary, err := newStockTakingProcessor(e, gateway).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Processed)

		record := e.record(t, productID, warehouse.ID)
		assert.Equal(t, int64(3), record.OnhandQuantity)
		assert.Equal(t, int64(2), record.ReservedQuantity)
		assert.Equal(t, int64(1), record.AvailableQuantity)
	})

	t.Run("resumes strictly after the latest imported count", func(t *testing.T) {
		e := newEnv(t)
		e.addWarehouse(t, "MAIN", 1)
		gateway := &fakeGateway{
			takings: []syncdomain.StockTakingRow{{
				WarehouseExternalID: 1,
				TakenAt:             time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
			}},
		}
		processor := newStockTakingProcessor(e, gateway)

		first, err := processor.Run(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, first.Processed)

		second, err := processor.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, second.Processed)

		// A later count at another warehouse still comes through
		e.addWarehouse(t, "SIDE", 2)
		gateway.takings = append(gateway.takings, syncdomain.StockTakingRow{
			WarehouseExternalID: 2,
			TakenAt:             time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
		})

		third, err := processor.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, third.Processed)
	})

	t.Run("unknown warehouse fails the row only", func(t *testing.T) {
		e := newEnv(t)
		gateway := &fakeGateway{
			takings: []syncdomain.StockTakingRow{{
				WarehouseExternalID: 42,
				TakenAt:             time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
			}},
		}

		summary, err := newStockTakingProcessor(e, gateway).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)

		entries, err := e.failures.RecentByType(ctx, syncdomain.TypeStockTaking, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Reason, "unknown warehouse")
	})
}
