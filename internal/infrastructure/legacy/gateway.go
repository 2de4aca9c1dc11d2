package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// Gateway reads batch rows from the legacy shop database. The legacy
// schema is owned by the old shop software and is read verbatim; all
// shaping into domain rows happens here.
type Gateway struct {
	conn *RetryableConnection
}

// NewGateway creates a gateway over a retryable legacy connection
func NewGateway(conn *RetryableConnection) *Gateway {
	return &Gateway{conn: conn}
}

const replenishmentQuery = `
SELECT id, invoice_number, invoice_date, supplier_name, currency_code, warehouse_id
FROM supplier_deliveries
WHERE id > $1
ORDER BY id ASC`

const replenishmentItemsQuery = `
SELECT delivery_id, product_external_id, sku, parent_sku, product_name,
       attribute_name, attribute_value, quantity, unit_price
FROM supplier_delivery_items
WHERE delivery_id = ANY($1)
ORDER BY delivery_id ASC, id ASC`

// FetchReplenishmentsSince returns supplier deliveries with id strictly
// greater than sinceExternalID, ascending
func (g *Gateway) FetchReplenishmentsSince(ctx context.Context, sinceExternalID int64) ([]syncdomain.ReplenishmentRow, error) {
	rows, err := g.conn.QueryContext(ctx, replenishmentQuery, sinceExternalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []syncdomain.ReplenishmentRow
	index := make(map[int64]int)
	ids := make([]int64, 0)
	for rows.Next() {
		var row syncdomain.ReplenishmentRow
		var currency sql.NullString
		if err := rows.Scan(&row.ExternalID, &row.InvoiceNumber, &row.InvoiceDate,
			&row.SupplierName, &currency, &row.WarehouseExternalID); err != nil {
			return nil, fmt.Errorf("scan supplier delivery: %w", err)
		}
		row.CurrencyCode = currency.String
		index[row.ExternalID] = len(result)
		ids = append(ids, row.ExternalID)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	itemRows, err := g.conn.QueryContext(ctx, replenishmentItemsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var deliveryID int64
		var item syncdomain.ReplenishmentRowItem
		var price string
		if err := itemRows.Scan(&deliveryID, &item.Product.ExternalID, &item.Product.SKU,
			&item.Product.ParentSKU, &item.Product.Name,
			&item.Product.AttributeName, &item.Product.AttributeValue,
			&item.Quantity, &price); err != nil {
			return nil, fmt.Errorf("scan supplier delivery item: %w", err)
		}
		item.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse unit price %q for delivery %d: %w", price, deliveryID, err)
		}
		i, ok := index[deliveryID]
		if !ok {
			continue
		}
		result[i].Items = append(result[i].Items, item)
	}
	return result, itemRows.Err()
}

const transferQuery = `
SELECT id, from_warehouse_id, to_warehouse_id, transferred_at
FROM warehouse_moves
WHERE id > $1
ORDER BY id ASC`

const transferItemsQuery = `
SELECT move_id, product_external_id, sku, parent_sku, product_name,
       attribute_name, attribute_value, quantity
FROM warehouse_move_items
WHERE move_id = ANY($1)
ORDER BY move_id ASC, id ASC`

// FetchTransfersSince returns warehouse moves with id strictly greater
// than sinceExternalID, ascending
func (g *Gateway) FetchTransfersSince(ctx context.Context, sinceExternalID int64) ([]syncdomain.TransferRow, error) {
	rows, err := g.conn.QueryContext(ctx, transferQuery, sinceExternalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []syncdomain.TransferRow
	index := make(map[int64]int)
	ids := make([]int64, 0)
	for rows.Next() {
		var row syncdomain.TransferRow
		if err := rows.Scan(&row.ExternalID, &row.FromWarehouseExternalID,
			&row.ToWarehouseExternalID, &row.TransferredAt); err != nil {
			return nil, fmt.Errorf("scan warehouse move: %w", err)
		}
		index[row.ExternalID] = len(result)
		ids = append(ids, row.ExternalID)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	itemRows, err := g.conn.QueryContext(ctx, transferItemsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var moveID int64
		var item syncdomain.TransferRowItem
		if err := itemRows.Scan(&moveID, &item.Product.ExternalID, &item.Product.SKU,
			&item.Product.ParentSKU, &item.Product.Name,
			&item.Product.AttributeName, &item.Product.AttributeValue,
			&item.Quantity); err != nil {
			return nil, fmt.Errorf("scan warehouse move item: %w", err)
		}
		if i, ok := index[moveID]; ok {
			result[i].Items = append(result[i].Items, item)
		}
	}
	return result, itemRows.Err()
}

const stockTakingQuery = `
SELECT id, warehouse_id, taken_at
FROM inventory_counts
WHERE taken_at > $1
ORDER BY taken_at ASC`

const stockTakingItemsQuery = `
SELECT count_id, product_external_id, sku, parent_sku, product_name,
       attribute_name, attribute_value, observed_quantity
FROM inventory_count_items
WHERE count_id = ANY($1)
ORDER BY count_id ASC, id ASC`

// FetchStockTakingsSince returns inventory counts taken strictly after
// the given time, ascending
func (g *Gateway) FetchStockTakingsSince(ctx context.Context, since time.Time) ([]syncdomain.StockTakingRow, error) {
	rows, err := g.conn.QueryContext(ctx, stockTakingQuery, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []syncdomain.StockTakingRow
	index := make(map[int64]int)
	ids := make([]int64, 0)
	for rows.Next() {
		var countID int64
		var row syncdomain.StockTakingRow
		if err := rows.Scan(&countID, &row.WarehouseExternalID, &row.TakenAt); err != nil {
			return nil, fmt.Errorf("scan inventory count: %w", err)
		}
		index[countID] = len(result)
		ids = append(ids, countID)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	itemRows, err := g.conn.QueryContext(ctx, stockTakingItemsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var countID int64
		var item syncdomain.StockTakingRowItem
		if err := itemRows.Scan(&countID, &item.Product.ExternalID, &item.Product.SKU,
			&item.Product.ParentSKU, &item.Product.Name,
			&item.Product.AttributeName, &item.Product.AttributeValue,
			&item.ObservedOnhand); err != nil {
			return nil, fmt.Errorf("scan inventory count item: %w", err)
		}
		if i, ok := index[countID]; ok {
			result[i].Items = append(result[i].Items, item)
		}
	}
	return result, itemRows.Err()
}

const invoiceLookupQuery = `
SELECT id
FROM supplier_deliveries
WHERE invoice_number = $1 AND invoice_date = $2`

// FindReplenishmentByInvoice looks up a delivery by its invoice key.
// Returns found=false when the legacy side has no such delivery.
func (g *Gateway) FindReplenishmentByInvoice(ctx context.Context, key syncdomain.InvoiceKey) (int64, bool, error) {
	var id int64
	err := g.conn.QueryRowScan(ctx, invoiceLookupQuery, []any{key.Number, key.Date}, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Ensure Gateway implements the legacy port
var _ syncdomain.LegacyGateway = (*Gateway)(nil)
