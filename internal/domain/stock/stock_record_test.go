package stock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockRecord(t *testing.T) {
	productID := uuid.New()
	warehouseID := uuid.New()

	t.Run("creates zeroed record", func(t *testing.T) {
		record, err := NewStockRecord(productID, warehouseID)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, productID, record.ProductID)
		assert.Equal(t, warehouseID, record.WarehouseID)
		assert.Zero(t, record.OnhandQuantity)
		assert.Zero(t, record.AvailableQuantity)
	})

	t.Run("fails with nil product ID", func(t *testing.T) {
		record, err := NewStockRecord(uuid.Nil, warehouseID)

		require.Error(t, err)
		assert.Nil(t, record)
		assert.Contains(t, err.Error(), "Product ID")
	})

	t.Run("fails with nil warehouse ID", func(t *testing.T) {
		record, err := NewStockRecord(productID, uuid.Nil)

		require.Error(t, err)
		assert.Nil(t, record)
		assert.Contains(t, err.Error(), "Warehouse ID")
	})
}

func TestStockRecord_Adjust(t *testing.T) {
	t.Run("recomputes available after every adjustment", func(t *testing.T) {
		record := newTestRecord(t)

		require.NoError(t, record.Adjust(QuantityOnhand, 100))
		assert.Equal(t, int64(100), record.AvailableQuantity)

		require.NoError(t, record.Adjust(QuantityReserved, 10))
		require.NoError(t, record.Adjust(QuantityOrdered, 20))
		require.NoError(t, record.Adjust(QuantityPreparing, 5))

		assert.Equal(t, int64(100), record.OnhandQuantity)
		assert.Equal(t, int64(65), record.AvailableQuantity)
	})

	t.Run("allows negative inputs during correction", func(t *testing.T) {
		record := newTestRecord(t)

		require.NoError(t, record.Adjust(QuantityReserved, -3))

		assert.Equal(t, int64(-3), record.ReservedQuantity)
		assert.Equal(t, int64(3), record.AvailableQuantity)
	})

	t.Run("rejects unknown quantity kind", func(t *testing.T) {
		record := newTestRecord(t)

		err := record.Adjust(QuantityKind("bogus"), 1)

		require.Error(t, err)
	})

	t.Run("raises a domain event", func(t *testing.T) {
		record := newTestRecord(t)

		require.NoError(t, record.Adjust(QuantityOnhand, 7))

		events := record.GetDomainEvents()
		require.NotEmpty(t, events)
		assert.Equal(t, EventTypeStockAdjusted, events[len(events)-1].EventType())
	})
}

func TestStockRecord_WriteOff(t *testing.T) {
	t.Run("clamps at current onhand", func(t *testing.T) {
		record := newTestRecord(t)
		require.NoError(t, record.Adjust(QuantityOnhand, 10))

		require.NoError(t, record.WriteOff(25, false))

		assert.Equal(t, int64(0), record.OnhandQuantity)
		assert.Equal(t, int64(0), record.AvailableQuantity)
	})

	t.Run("removes quantity when covered", func(t *testing.T) {
		record := newTestRecord(t)
		require.NoError(t, record.Adjust(QuantityOnhand, 10))

		require.NoError(t, record.WriteOff(4, false))

		assert.Equal(t, int64(6), record.OnhandQuantity)
	})

	t.Run("overwrite sets onhand directly", func(t *testing.T) {
		record := newTestRecord(t)
		require.NoError(t, record.Adjust(QuantityOnhand, 10))
		require.NoError(t, record.Adjust(QuantityReserved, 2))

		require.NoError(t, record.WriteOff(50, true))

		assert.Equal(t, int64(50), record.OnhandQuantity)
		assert.Equal(t, int64(48), record.AvailableQuantity)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		record := newTestRecord(t)

		err := record.WriteOff(-1, false)

		require.Error(t, err)
	})
}

func TestStockRecord_SetFromCount(t *testing.T) {
	record := newTestRecord(t)
	require.NoError(t, record.Adjust(QuantityOnhand, 100))
	require.NoError(t, record.Adjust(QuantityReserved, 30))

	record.SetFromCount(42)

	assert.Equal(t, int64(42), record.OnhandQuantity)
	assert.Equal(t, int64(12), record.AvailableQuantity)
}

func newTestRecord(t *testing.T) *StockRecord {
	t.Helper()
	record, err := NewStockRecord(uuid.New(), uuid.New())
	require.NoError(t, err)
	return record
}
