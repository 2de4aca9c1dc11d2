package legacy

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/infrastructure/config"
)

func newTestGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	cfg := &config.LegacyDBConfig{
		MaxRetries:  1,
		BackoffBase: time.Millisecond,
		BackoffMax:  time.Millisecond,
	}
	return NewGateway(NewRetryableConnection(mockDB, cfg, zap.NewNop())), mock
}

func TestGateway_FetchTransfersSince(t *testing.T) {
	t.Run("joins items onto their rows", func(t *testing.T) {
		gw, mock := newTestGateway(t)
		movedAt := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

		mock.ExpectQuery("FROM warehouse_moves").
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "from_warehouse_id", "to_warehouse_id", "transferred_at"}).
				AddRow(int64(11), int64(1), int64(2), movedAt).
				AddRow(int64(12), int64(2), int64(1), movedAt.Add(time.Hour)))

		mock.ExpectQuery("FROM warehouse_move_items").
			WillReturnRows(sqlmock.NewRows([]string{
				"move_id", "product_external_id", "sku", "parent_sku", "product_name",
				"attribute_name", "attribute_value", "quantity",
			}).
				AddRow(int64(11), "100", "SKU-100", "", "Lamp", "", "", int64(3)).
				AddRow(int64(11), "100_7", "SKU-100-R", "SKU-100", "Lamp Red", "Color", "Red", int64(2)).
				AddRow(int64(12), "200", "SKU-200", "", "Desk", "", "", int64(1)))

		rows, err := gw.FetchTransfersSince(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, int64(11), rows[0].ExternalID)
		require.Len(t, rows[0].Items, 2)
		assert.Equal(t, "100_7", rows[0].Items[1].Product.ExternalID)
		assert.True(t, rows[0].Items[1].Product.IsVariant())
		assert.Equal(t, int64(2), rows[0].Items[1].Quantity)

		require.Len(t, rows[1].Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result skips the item query", func(t *testing.T) {
		gw, mock := newTestGateway(t)

		mock.ExpectQuery("FROM warehouse_moves").
			WillReturnRows(sqlmock.NewRows([]string{"id", "from_warehouse_id", "to_warehouse_id", "transferred_at"}))

		rows, err := gw.FetchTransfersSince(context.Background(), 0)
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGateway_FetchReplenishmentsSince(t *testing.T) {
	t.Run("parses prices as decimals", func(t *testing.T) {
		gw, mock := newTestGateway(t)
		invoiced := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("FROM supplier_deliveries").
			WithArgs(int64(0)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "invoice_number", "invoice_date", "supplier_name", "currency_code", "warehouse_id",
			}).AddRow(int64(1), "INV-1", invoiced, "Acme", "EUR", int64(1)))

		mock.ExpectQuery("FROM supplier_delivery_items").
			WillReturnRows(sqlmock.NewRows([]string{
				"delivery_id", "product_external_id", "sku", "parent_sku", "product_name",
				"attribute_name", "attribute_value", "quantity", "unit_price",
			}).AddRow(int64(1), "100", "SKU-100", "", "Lamp", "", "", int64(10), "12.5000"))

		rows, err := gw.FetchReplenishmentsSince(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Len(t, rows[0].Items, 1)
		assert.Equal(t, "12.5", rows[0].Items[0].UnitPrice.String())
		assert.Equal(t, syncdomain.InvoiceKey{Number: "INV-1", Date: invoiced}, rows[0].Key())
	})
}

func TestGateway_FindReplenishmentByInvoice(t *testing.T) {
	key := syncdomain.InvoiceKey{Number: "INV-9", Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)}

	t.Run("returns id when the invoice exists", func(t *testing.T) {
		gw, mock := newTestGateway(t)

		mock.ExpectQuery("FROM supplier_deliveries").
			WithArgs(key.Number, key.Date).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))

		id, found, err := gw.FindReplenishmentByInvoice(context.Background(), key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(77), id)
	})

	t.Run("reports not found without error", func(t *testing.T) {
		gw, mock := newTestGateway(t)

		mock.ExpectQuery("FROM supplier_deliveries").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, found, err := gw.FindReplenishmentByInvoice(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
