package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/shared"
	"github.com/stocksync/engine/internal/domain/stock"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestGormStockRecordRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save and find by product and warehouse", func(t *testing.T) {
		repo := NewGormStockRecordRepository(setupTestDB(t))

		productID := uuid.New()
		warehouseID := uuid.New()
		record, err := stock.NewStockRecord(productID, warehouseID)
		require.NoError(t, err)
		require.NoError(t, record.Adjust(stock.QuantityOnhand, 25))
		require.NoError(t, repo.Save(ctx, record))

		found, err := repo.FindByProductAndWarehouse(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.Equal(t, int64(25), found.OnhandQuantity)
		assert.Equal(t, int64(25), found.AvailableQuantity)
	})

	t.Run("missing record maps to ErrNotFound", func(t *testing.T) {
		repo := NewGormStockRecordRepository(setupTestDB(t))

		_, err := repo.FindByProductAndWarehouse(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormReplenishmentRepository(t *testing.T) {
	ctx := context.Background()

	save := func(t *testing.T, repo *GormReplenishmentRepository, externalID int64, invoice string, date time.Time) {
		batch, err := stock.NewReplenishmentBatch(externalID, invoice, date, uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, batch))
	}

	t.Run("exists by natural key", func(t *testing.T) {
		repo := NewGormReplenishmentRepository(setupTestDB(t))
		date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		save(t, repo, 7, "INV-7", date)

		exists, err := repo.ExistsByNaturalKey(ctx, "INV-7", date)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByNaturalKey(ctx, "INV-8", date)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("recent keys come back newest first", func(t *testing.T) {
		repo := NewGormReplenishmentRepository(setupTestDB(t))
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		for i := int64(1); i <= 5; i++ {
			save(t, repo, i, "INV-"+uuid.NewString()[:8], base.AddDate(0, 0, int(i)))
		}

		keys, err := repo.RecentKeys(ctx, 3)
		require.NoError(t, err)
		require.Len(t, keys, 3)
		assert.Equal(t, base.AddDate(0, 0, 5), keys[0].InvoiceDate)
		assert.True(t, keys[0].InvoiceDate.After(keys[1].InvoiceDate))
		assert.True(t, keys[1].InvoiceDate.After(keys[2].InvoiceDate))
	})
}

func TestGormTransferRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("max external id is zero on empty table", func(t *testing.T) {
		repo := NewGormTransferRepository(setupTestDB(t))

		max, err := repo.MaxExternalID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), max)
	})

	t.Run("max external id tracks highest import", func(t *testing.T) {
		repo := NewGormTransferRepository(setupTestDB(t))
		for _, id := range []int64{11, 42, 23} {
			batch, err := stock.NewTransferBatch(id, uuid.New(), uuid.New(), time.Now())
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, batch))
		}

		max, err := repo.MaxExternalID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(42), max)

		exists, err := repo.ExistsByExternalID(ctx, 23)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestGormOrderImportRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("tracks imported orders per channel", func(t *testing.T) {
		repo := NewGormOrderImportRepository(setupTestDB(t))

		first, err := syncdomain.NewOrderImport(1, "ORD-100", uuid.New(), time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		second, err := syncdomain.NewOrderImport(1, "ORD-101", uuid.New(), time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))
		require.NoError(t, repo.Save(ctx, second))

		exists, err := repo.Exists(ctx, 1, "ORD-100")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.Exists(ctx, 2, "ORD-100")
		require.NoError(t, err)
		assert.False(t, exists)

		latest, err := repo.LatestPlacedAt(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, second.PlacedAt, latest)
	})

	t.Run("latest placed at is zero for unseen channel", func(t *testing.T) {
		repo := NewGormOrderImportRepository(setupTestDB(t))

		latest, err := repo.LatestPlacedAt(ctx, 99)
		require.NoError(t, err)
		assert.True(t, latest.IsZero())
	})
}

func TestGormCustomerRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("family head is the oldest root customer for an email", func(t *testing.T) {
		repo := NewGormCustomerRepository(setupTestDB(t))

		head, err := partner.NewCustomer("jo@example.com", 1, "Jo")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, head))

		child, err := partner.NewChildCustomer(head, 2, "Jo")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, child))

		found, err := repo.FindFamilyHead(ctx, "JO@example.com")
		require.NoError(t, err)
		assert.Equal(t, head.ID, found.ID)

		byChannel, err := repo.FindByEmailAndChannel(ctx, "jo@example.com", 2)
		require.NoError(t, err)
		assert.Equal(t, child.ID, byChannel.ID)
	})
}
