package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Replenishment calculation types stored on warehouse-product records.
// Type 0 defers to the parent product, type 1 computes from sales history,
// types 2 through 5 are explicit manual strategies.
const (
	CalculationTypeInherited = 0
	CalculationTypeAutomatic = 1
	CalculationTypeManualMin = 2
	CalculationTypeManualMax = 5
)

// WarehouseProduct carries per-(product, warehouse) replenishment settings.
// CalculationType nil means unset; the effective policy is then resolved
// from the parent product and the warehouse hierarchy.
type WarehouseProduct struct {
	shared.BaseAggregateRoot
	ProductID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_warehouse_product,priority:1"`
	WarehouseID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_warehouse_product,priority:2"`
	CalculationType *int
	AnalyzedPeriod  *int // days of history considered by the automatic strategy
}

// TableName returns the table name for GORM
func (WarehouseProduct) TableName() string {
	return "warehouse_products"
}

// NewWarehouseProduct creates a new warehouse-product record with no
// explicit calculation settings
func NewWarehouseProduct(productID, warehouseID uuid.UUID) (*WarehouseProduct, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &WarehouseProduct{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
	}, nil
}

// SetCalculationType sets the explicit calculation type for this record
func (wp *WarehouseProduct) SetCalculationType(calcType int, analyzedPeriod *int) error {
	if calcType < CalculationTypeInherited || calcType > CalculationTypeManualMax {
		return shared.NewDomainError("INVALID_CALCULATION_TYPE", "Calculation type must be between 0 and 5")
	}
	if calcType == CalculationTypeAutomatic && (analyzedPeriod == nil || *analyzedPeriod <= 0) {
		return shared.NewDomainError("INVALID_ANALYZED_PERIOD", "Automatic calculation requires a positive analyzed period")
	}

	wp.CalculationType = &calcType
	wp.AnalyzedPeriod = analyzedPeriod
	wp.UpdatedAt = time.Now()
	wp.IncrementVersion()
	return nil
}

// ClearCalculationType removes the explicit settings so the effective
// policy falls back to parent and hierarchy defaults
func (wp *WarehouseProduct) ClearCalculationType() {
	wp.CalculationType = nil
	wp.AnalyzedPeriod = nil
	wp.UpdatedAt = time.Now()
	wp.IncrementVersion()
}
