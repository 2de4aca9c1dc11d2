package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// QuantityKind identifies one of the four input quantities of a stock record.
type QuantityKind string

const (
	QuantityOnhand    QuantityKind = "onhand"
	QuantityReserved  QuantityKind = "reserved"
	QuantityOrdered   QuantityKind = "ordered"
	QuantityPreparing QuantityKind = "preparing"
)

// IsValid checks if the kind is a known quantity kind
func (k QuantityKind) IsValid() bool {
	switch k {
	case QuantityOnhand, QuantityReserved, QuantityOrdered, QuantityPreparing:
		return true
	}
	return false
}

// StockRecord holds the quantities of one product at one warehouse.
// It is the aggregate root for ledger operations; the composite identifier
// is ProductID + WarehouseID. Records are created on first reference and
// never deleted.
//
// AvailableQuantity is derived: onhand minus reserved, ordered and preparing.
// Every mutation funnels through recompute so the derived value is never
// left stale. Input quantities may go negative transiently during correction.
type StockRecord struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_warehouse,priority:1"`
	WarehouseID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_warehouse,priority:2"`
	OnhandQuantity    int64     `gorm:"not null;default:0"`
	ReservedQuantity  int64     `gorm:"not null;default:0"`
	OrderedQuantity   int64     `gorm:"not null;default:0"`
	PreparingQuantity int64     `gorm:"not null;default:0"`
	AvailableQuantity int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates a new zeroed stock record for a product-warehouse pair
func NewStockRecord(productID, warehouseID uuid.UUID) (*StockRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &StockRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
	}, nil
}

// Adjust adds delta to the given quantity kind and recomputes availability
func (r *StockRecord) Adjust(kind QuantityKind, delta int64) error {
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_QUANTITY_KIND", "Unknown quantity kind")
	}

	switch kind {
	case QuantityOnhand:
		r.OnhandQuantity += delta
	case QuantityReserved:
		r.ReservedQuantity += delta
	case QuantityOrdered:
		r.OrderedQuantity += delta
	case QuantityPreparing:
		r.PreparingQuantity += delta
	}

	r.recompute()
	r.AddDomainEvent(NewStockAdjustedEvent(r, kind, delta))
	return nil
}

// WriteOff removes quantity from onhand stock. With overwrite false the
// write-off is clamped at the current onhand so the field never goes
// negative; with overwrite true onhand is set to quantity directly.
func (r *StockRecord) WriteOff(quantity int64, overwrite bool) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Write-off quantity cannot be negative")
	}

	if overwrite {
		r.OnhandQuantity = quantity
	} else {
		removed := quantity
		if removed > r.OnhandQuantity {
			removed = r.OnhandQuantity
		}
		if removed < 0 {
			removed = 0
		}
		r.OnhandQuantity -= removed
	}

	r.recompute()
	r.AddDomainEvent(NewStockWrittenOffEvent(r, quantity, overwrite))
	return nil
}

// SetFromCount overwrites onhand with a physically observed count.
// The physical count is authoritative.
func (r *StockRecord) SetFromCount(observedOnhand int64) {
	r.OnhandQuantity = observedOnhand
	r.recompute()
	r.AddDomainEvent(NewStockCountedEvent(r, observedOnhand))
}

// recompute refreshes the derived available quantity. Every mutation entry
// point must end here.
func (r *StockRecord) recompute() {
	r.AvailableQuantity = r.OnhandQuantity - r.ReservedQuantity - r.OrderedQuantity - r.PreparingQuantity
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
