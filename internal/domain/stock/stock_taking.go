package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// StockTakingBatch records one physical count imported from the legacy
// platform. The natural key is (external warehouse id, taken-at timestamp).
type StockTakingBatch struct {
	shared.BaseAggregateRoot
	ExternalWarehouseID int64     `gorm:"not null;uniqueIndex:idx_stock_taking_key,priority:1"`
	TakenAt             time.Time `gorm:"not null;uniqueIndex:idx_stock_taking_key,priority:2"`
	WarehouseID         uuid.UUID `gorm:"type:uuid;not null;index"`

	Items []StockTakingItem `gorm:"foreignKey:BatchID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTakingBatch) TableName() string {
	return "stock_takings"
}

// NewStockTakingBatch creates a new stock taking batch
func NewStockTakingBatch(externalWarehouseID int64, warehouseID uuid.UUID, takenAt time.Time) (*StockTakingBatch, error) {
	if externalWarehouseID <= 0 {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External warehouse ID must be positive")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if takenAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_TIMESTAMP", "Taking timestamp is required")
	}

	return &StockTakingBatch{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		ExternalWarehouseID: externalWarehouseID,
		WarehouseID:         warehouseID,
		TakenAt:             takenAt,
		Items:               make([]StockTakingItem, 0),
	}, nil
}

// AddItem appends a counted line to the batch. Observed counts of zero are
// valid; a physical count may find nothing on the shelf.
func (b *StockTakingBatch) AddItem(productID uuid.UUID, observedOnhand int64) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if observedOnhand < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Observed quantity cannot be negative")
	}

	b.Items = append(b.Items, StockTakingItem{
		ID:             uuid.New(),
		BatchID:        b.ID,
		ProductID:      productID,
		ObservedOnhand: observedOnhand,
		CreatedAt:      time.Now(),
	})
	b.UpdatedAt = time.Now()
	return nil
}

// StockTakingItem is one counted line in a stock taking batch
type StockTakingItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	BatchID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null"`
	ObservedOnhand int64     `gorm:"not null"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (StockTakingItem) TableName() string {
	return "stock_taking_products"
}
