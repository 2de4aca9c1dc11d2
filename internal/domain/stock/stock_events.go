package stock

import (
	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Event types for the stock context
const (
	EventTypeStockAdjusted   = "stock.record.adjusted"
	EventTypeStockWrittenOff = "stock.record.written_off"
	EventTypeStockCounted    = "stock.record.counted"
)

// StockAdjustedEvent is emitted when a quantity field is adjusted by a delta
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID         uuid.UUID    `json:"product_id"`
	WarehouseID       uuid.UUID    `json:"warehouse_id"`
	Kind              QuantityKind `json:"kind"`
	Delta             int64        `json:"delta"`
	AvailableQuantity int64        `json:"available_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(record *StockRecord, kind QuantityKind, delta int64) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockAdjusted, "StockRecord", record.ID),
		ProductID:         record.ProductID,
		WarehouseID:       record.WarehouseID,
		Kind:              kind,
		Delta:             delta,
		AvailableQuantity: record.AvailableQuantity,
	}
}

// StockWrittenOffEvent is emitted when onhand stock is written off
type StockWrittenOffEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID `json:"product_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	Quantity       int64     `json:"quantity"`
	Overwrite      bool      `json:"overwrite"`
	OnhandQuantity int64     `json:"onhand_quantity"`
}

// NewStockWrittenOffEvent creates a new StockWrittenOffEvent
func NewStockWrittenOffEvent(record *StockRecord, quantity int64, overwrite bool) *StockWrittenOffEvent {
	return &StockWrittenOffEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockWrittenOff, "StockRecord", record.ID),
		ProductID:       record.ProductID,
		WarehouseID:     record.WarehouseID,
		Quantity:        quantity,
		Overwrite:       overwrite,
		OnhandQuantity:  record.OnhandQuantity,
	}
}

// StockCountedEvent is emitted when onhand stock is overwritten by a physical count
type StockCountedEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID `json:"product_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	ObservedOnhand int64     `json:"observed_onhand"`
}

// NewStockCountedEvent creates a new StockCountedEvent
func NewStockCountedEvent(record *StockRecord, observedOnhand int64) *StockCountedEvent {
	return &StockCountedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCounted, "StockRecord", record.ID),
		ProductID:       record.ProductID,
		WarehouseID:     record.WarehouseID,
		ObservedOnhand:  observedOnhand,
	}
}
