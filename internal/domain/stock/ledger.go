package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Ledger is the single entry point for stock quantity mutations. It owns
// the find-or-create behavior for (product, warehouse) rows and guarantees
// that every mutation goes through the aggregate's recomputation of the
// derived available quantity before being persisted.
type Ledger struct {
	records StockRecordRepository
}

// NewLedger creates a new stock ledger over the given record repository
func NewLedger(records StockRecordRepository) *Ledger {
	return &Ledger{records: records}
}

// Adjust adds delta to one quantity kind of the (product, warehouse) record,
// creating the record first if this pair has never been referenced.
func (l *Ledger) Adjust(ctx context.Context, productID, warehouseID uuid.UUID, kind QuantityKind, delta int64) (*StockRecord, error) {
	record, err := l.findOrCreate(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	if err := record.Adjust(kind, delta); err != nil {
		return nil, err
	}

	if err := l.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// WriteOff removes quantity from onhand stock, clamped at zero unless
// overwrite is set, in which case onhand is set to quantity directly.
func (l *Ledger) WriteOff(ctx context.Context, productID, warehouseID uuid.UUID, quantity int64, overwrite bool) (*StockRecord, error) {
	record, err := l.findOrCreate(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	if err := record.WriteOff(quantity, overwrite); err != nil {
		return nil, err
	}

	if err := l.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// SetFromCount overwrites onhand with a physically observed count
func (l *Ledger) SetFromCount(ctx context.Context, productID, warehouseID uuid.UUID, observedOnhand int64) (*StockRecord, error) {
	record, err := l.findOrCreate(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	record.SetFromCount(observedOnhand)

	if err := l.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (l *Ledger) findOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*StockRecord, error) {
	record, err := l.records.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return NewStockRecord(productID, warehouseID)
}
