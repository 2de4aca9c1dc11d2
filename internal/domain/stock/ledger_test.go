package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksync/engine/internal/domain/shared"
)

// memoryRecordRepo is an in-memory StockRecordRepository for ledger tests
type memoryRecordRepo struct {
	records map[string]*StockRecord
	saves   int
}

func newMemoryRecordRepo() *memoryRecordRepo {
	return &memoryRecordRepo{records: make(map[string]*StockRecord)}
}

func (r *memoryRecordRepo) key(productID, warehouseID uuid.UUID) string {
	return productID.String() + "/" + warehouseID.String()
}

func (r *memoryRecordRepo) FindByID(_ context.Context, id uuid.UUID) (*StockRecord, error) {
	for _, record := range r.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRecordRepo) FindByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*StockRecord, error) {
	record, ok := r.records[r.key(productID, warehouseID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return record, nil
}

func (r *memoryRecordRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]StockRecord, error) {
	var out []StockRecord
	for _, record := range r.records {
		if record.WarehouseID == warehouseID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *memoryRecordRepo) Save(_ context.Context, record *StockRecord) error {
	r.records[r.key(record.ProductID, record.WarehouseID)] = record
	r.saves++
	return nil
}

func TestLedger_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("creates record on first reference", func(t *testing.T) {
		repo := newMemoryRecordRepo()
		ledger := NewLedger(repo)
		productID := uuid.New()
		warehouseID := uuid.New()

		record, err := ledger.Adjust(ctx, productID, warehouseID, QuantityOnhand, 12)

		require.NoError(t, err)
		assert.Equal(t, int64(12), record.OnhandQuantity)
		assert.Equal(t, int64(12), record.AvailableQuantity)
		assert.Len(t, repo.records, 1)
	})

	t.Run("reuses existing record", func(t *testing.T) {
		repo := newMemoryRecordRepo()
		ledger := NewLedger(repo)
		productID := uuid.New()
		warehouseID := uuid.New()

		_, err := ledger.Adjust(ctx, productID, warehouseID, QuantityOnhand, 10)
		require.NoError(t, err)
		record, err := ledger.Adjust(ctx, productID, warehouseID, QuantityReserved, 4)
		require.NoError(t, err)

		assert.Equal(t, int64(10), record.OnhandQuantity)
		assert.Equal(t, int64(4), record.ReservedQuantity)
		assert.Equal(t, int64(6), record.AvailableQuantity)
		assert.Len(t, repo.records, 1)
	})

	t.Run("persists after mutation", func(t *testing.T) {
		repo := newMemoryRecordRepo()
		ledger := NewLedger(repo)

		_, err := ledger.Adjust(ctx, uuid.New(), uuid.New(), QuantityOnhand, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, repo.saves)
	})
}

func TestLedger_WriteOff(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRecordRepo()
	ledger := NewLedger(repo)
	productID := uuid.New()
	warehouseID := uuid.New()

	_, err := ledger.Adjust(ctx, productID, warehouseID, QuantityOnhand, 8)
	require.NoError(t, err)

	record, err := ledger.WriteOff(ctx, productID, warehouseID, 20, false)

	require.NoError(t, err)
	assert.Equal(t, int64(0), record.OnhandQuantity)
}

func TestLedger_SetFromCount(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRecordRepo()
	ledger := NewLedger(repo)
	productID := uuid.New()
	warehouseID := uuid.New()

	// A count against a never-referenced pair creates the record
	record, err := ledger.SetFromCount(ctx, productID, warehouseID, 33)

	require.NoError(t, err)
	assert.Equal(t, int64(33), record.OnhandQuantity)
	assert.Equal(t, int64(33), record.AvailableQuantity)
	assert.Len(t, repo.records, 1)
}
