package policy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stocksync/engine/internal/domain/catalog"
	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/stock"
	"github.com/stocksync/engine/internal/infrastructure/persistence"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	svc := NewService(
		persistence.NewGormWarehouseProductRepository(db),
		persistence.NewGormProductRepository(db),
		persistence.NewGormWarehouseRepository(db),
		stock.CalculationTypeManualMin,
	)
	return svc, db
}

func TestService_ResolveFor(t *testing.T) {
	ctx := context.Background()

	t.Run("variant without settings resolves through its parent", func(t *testing.T) {
		svc, db := newTestService(t)
		products := persistence.NewGormProductRepository(db)
		warehouses := persistence.NewGormWarehouseRepository(db)
		records := persistence.NewGormWarehouseProductRepository(db)

		parent, err := catalog.NewProduct("SHIRT", "Shirt")
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, parent))
		variant, err := catalog.NewVariant(parent, "SHIRT-RED", "Shirt Red")
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, variant))

		warehouse, err := partner.NewWarehouse("MAIN", "Main")
		require.NoError(t, err)
		require.NoError(t, warehouses.Save(ctx, warehouse))

		parentRecord, err := stock.NewWarehouseProduct(parent.ID, warehouse.ID)
		require.NoError(t, err)
		require.NoError(t, parentRecord.SetCalculationType(4, nil))
		require.NoError(t, records.Save(ctx, parentRecord))

		decision, err := svc.ResolveFor(ctx, variant.ID, warehouse.ID)

		require.NoError(t, err)
		assert.Equal(t, 4, decision.CalculationType)
		assert.Equal(t, SourceParent, decision.Source)
	})

	t.Run("warehouse hierarchy default applies across products", func(t *testing.T) {
		svc, db := newTestService(t)
		products := persistence.NewGormProductRepository(db)
		warehouses := persistence.NewGormWarehouseRepository(db)

		product, err := catalog.NewProduct("SHIRT", "Shirt")
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, product))

		root, err := partner.NewWarehouse("ROOT", "Root")
		require.NoError(t, err)
		transferDefault := 5
		root.TransferDefaultCalculationType = &transferDefault
		require.NoError(t, warehouses.Save(ctx, root))

		leaf, err := partner.NewWarehouse("LEAF", "Leaf")
		require.NoError(t, err)
		require.NoError(t, leaf.SetParent(root.ID))
		require.NoError(t, warehouses.Save(ctx, leaf))

		decision, err := svc.ResolveFor(ctx, product.ID, leaf.ID)

		require.NoError(t, err)
		assert.Equal(t, 5, decision.CalculationType)
		assert.Equal(t, SourceWarehouse, decision.Source)
	})

	t.Run("falls back to the global default", func(t *testing.T) {
		svc, db := newTestService(t)
		products := persistence.NewGormProductRepository(db)
		warehouses := persistence.NewGormWarehouseRepository(db)

		product, err := catalog.NewProduct("SHIRT", "Shirt")
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, product))
		warehouse, err := partner.NewWarehouse("MAIN", "Main")
		require.NoError(t, err)
		require.NoError(t, warehouses.Save(ctx, warehouse))

		decision, err := svc.ResolveFor(ctx, product.ID, warehouse.ID)

		require.NoError(t, err)
		assert.Equal(t, stock.CalculationTypeManualMin, decision.CalculationType)
		assert.Equal(t, SourceGlobal, decision.Source)
	})

	t.Run("unknown product is an error", func(t *testing.T) {
		svc, db := newTestService(t)
		warehouses := persistence.NewGormWarehouseRepository(db)
		warehouse, err := partner.NewWarehouse("MAIN", "Main")
		require.NoError(t, err)
		require.NoError(t, warehouses.Save(ctx, warehouse))

		_, err = svc.ResolveFor(ctx, uuid.New(), warehouse.ID)

		require.Error(t, err)
	})
}
