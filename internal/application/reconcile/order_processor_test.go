package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/infrastructure/persistence"
)

func newOrderProcessor(e *env, platforms ...syncdomain.StorefrontPlatform) *OrderProcessor {
	return NewOrderProcessor(
		platforms, e.entities, e.ledger, e.imports, e.warehouses,
		e.lease, e.runs, e.failures, zap.NewNop(),
	)
}

func paidOrder(externalID string, channel int64) syncdomain.OrderRow {
	return syncdomain.OrderRow{
		ExternalID:     externalID,
		SalesChannelID: channel,
		Email:          "jo@example.com",
		CustomerName:   "Jo",
		CountryCode:    "DE",
		City:           "Berlin",
		Street:         "Unter den Linden 1",
		PostalCode:     "10117",
		Status:         syncdomain.OrderStatusPaid,
		PlacedAt:       time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		CurrencyCode:   "EUR",
		Items: []syncdomain.OrderRowItem{
			{Product: productRef("100", "SHIRT", "Shirt"), Quantity: 2, UnitPrice: decimal.RequireFromString("19.9")},
		},
	}
}

func TestOrderProcessor_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("paid order reserves stock and records the import", func(t *testing.T) {
		e := newEnv(t)
		warehouse := e.addWarehouse(t, "MAIN", 1)
		platform := &fakePlatform{code: "shopA", channel: 1, orders: []syncdomain.OrderRow{paidOrder("ORD-1", 1)}}

		summary, err := newOrderProcessor(e, platform).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Processed)

		productID := e.productBySKU(t, "SHIRT")
		record := e.record(t, productID, warehouse.ID)
		assert.Equal(t, int64(2), record.ReservedQuantity)
		assert.Equal(t, int64(-2), record.AvailableQuantity)

		exists, err := e.imports.Exists(ctx, 1, "ORD-1")
		require.NoError(t, err)
		assert.True(t, exists)

		customer, err := persistence.NewGormCustomerRepository(e.db).FindByEmailAndChannel(ctx, "jo@example.com", 1)
		require.NoError(t, err)
		assert.True(t, customer.IsFamilyHead())
	})

	t.Run("already imported orders are skipped", func(t *testing.T) {
		e := newEnv(t)
		warehouse := e.addWarehouse(t, "MAIN", 1)
		platform := &fakePlatform{code: "shopA", channel: 1, orders: []syncdomain.OrderRow{paidOrder("ORD-1", 1)}}
		processor := newOrderProcessor(e, platform)

		_, err := processor.Run(ctx)
		require.NoError(t, err)
		summary, err := processor.Run(ctx)
		require.NoError(t, err)

		assert.Zero(t, summary.Processed)
		assert.Equal(t, 1, summary.Skipped)

		// The reservation was not doubled
		productID := e.productBySKU(t, "SHIRT")
		assert.Equal(t, int64(2), e.record(t, productID, warehouse.ID).ReservedQuantity)
	})

	t.Run("cancelled orders are skipped without side effects", func(t *testing.T) {
		e := newEnv(t)
		e.addWarehouse(t, "MAIN", 1)
		order := paidOrder("ORD-2", 1)
		order.Status = syncdomain.OrderStatusCancelled
		platform := &fakePlatform{code: "shopA", channel: 1, orders: []syncdomain.OrderRow{order}}

		summary, err := newOrderProcessor(e, platform).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Skipped)

		exists, err := e.imports.Exists(ctx, 1, "ORD-2")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("shipped orders are recorded without reserving stock", func(t *testing.T) {
		e := newEnv(t)
		e.addWarehouse(t, "MAIN", 1)
		order := paidOrder("ORD-3", 1)
		order.Status = syncdomain.OrderStatusShipped
		platform := &fakePlatform{code: "shopA", channel: 1, orders: []syncdomain.OrderRow{order}}

		summary, err := newOrderProcessor(e, platform).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Processed)

		exists, err := e.imports.Exists(ctx, 1, "ORD-3")
		require.NoError(t, err)
		assert.True(t, exists)

		// No product was touched for a shipped order
		_, err = persistence.NewGormProductRepository(e.db).FindBySKU(ctx, "SHIRT")
		require.Error(t, err)
	})

	t.Run("order without email is logged as a failure", func(t *testing.T) {
		e := newEnv(t)
		e.addWarehouse(t, "MAIN", 1)
		order := paidOrder("ORD-4", 1)
		order.Email = ""
		platform := &fakePlatform{code: "shopA", channel: 1, orders: []syncdomain.OrderRow{order}}

		summary, err := newOrderProcessor(e, platform).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)

		entries, err := e.failures.RecentByType(ctx, syncdomain.TypeOrder, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "order:1:ORD-4", entries[0].ExternalRef)
	})

	t.Run("same email across platforms joins one account family", func(t *testing.T) {
		e := newEnv(t)
		e.addWarehouse(t, "MAIN", 1)
		platformA := &fakePlatform{code: "shopA", channel: 1, orders: []syncdomain.OrderRow{paidOrder("ORD-1", 1)}}
		orderB := paidOrder("ORD-9", 2)
		platformB := &fakePlatform{code: "shopB", channel: 2, orders: []syncdomain.OrderRow{orderB}}

		summary, err := newOrderProcessor(e, platformA, platformB).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Processed)

		customers := persistence.NewGormCustomerRepository(e.db)
		head, err := customers.FindByEmailAndChannel(ctx, "jo@example.com", 1)
		require.NoError(t, err)
		child, err := customers.FindByEmailAndChannel(ctx, "jo@example.com", 2)
		require.NoError(t, err)
		require.NotNil(t, child.ParentCustomerID)
		assert.Equal(t, head.ID, *child.ParentCustomerID)
	})

	t.Run("fails without any configured warehouse", func(t *testing.T) {
		e := newEnv(t)
		platform := &fakePlatform{code: "shopA", channel: 1}

		_, err := newOrderProcessor(e, platform).Run(ctx)

		require.ErrorIs(t, err, syncdomain.ErrValidation)
		assert.Equal(t, syncdomain.RunStatusFailed, e.lastRun(t).Status)
	})
}
