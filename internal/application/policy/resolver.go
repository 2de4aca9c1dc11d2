package policy

import (
	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/shared"
	"github.com/stocksync/engine/internal/domain/stock"
)

// Kind classifies the resolved replenishment policy
type Kind string

const (
	// KindManual means an explicit strategy (types 2-5) applies
	KindManual Kind = "MANUAL"
	// KindAutomatic means the quantity is computed from sales history over
	// an analyzed period (type 1)
	KindAutomatic Kind = "AUTOMATIC"
)

// Source records which level of the hierarchy supplied the decision
type Source string

const (
	SourceProduct   Source = "product"
	SourceParent    Source = "parent_product"
	SourceWarehouse Source = "warehouse_default"
	SourceGlobal    Source = "global_default"
)

// Decision is the resolved replenishment policy for one (product, warehouse)
type Decision struct {
	Kind            Kind
	CalculationType int
	AnalyzedPeriod  *int // set for automatic decisions
	Source          Source
}

// Snapshot is an immutable view of everything the resolver reads: the
// warehouse-product records, the product parent links, and the warehouse
// hierarchy. Building it is the caller's job, which keeps Resolve a pure
// function and independently testable.
type Snapshot struct {
	// Records maps (product, warehouse) to its replenishment settings
	Records map[RecordKey]*stock.WarehouseProduct
	// ParentProducts maps a variant product id to its parent product id
	ParentProducts map[uuid.UUID]uuid.UUID
	// Warehouses maps warehouse id to its hierarchy node
	Warehouses map[uuid.UUID]*partner.Warehouse
	// GlobalDefault applies when neither the product, its parent, nor any
	// warehouse ancestor carries a calculation type
	GlobalDefault int
}

// RecordKey identifies a warehouse-product record inside a snapshot
type RecordKey struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
}

// Resolve classifies the replenishment policy for a product at a warehouse.
//
// Resolution order: the product's own explicit type, then the parent
// product's type at the same warehouse (variants only), then the first
// transfer default found walking up the warehouse hierarchy, then the
// global default. The resolver never creates records.
func Resolve(snap Snapshot, productID, warehouseID uuid.UUID) (Decision, error) {
	if productID == uuid.Nil || warehouseID == uuid.Nil {
		return Decision{}, shared.NewDomainError("INVALID_INPUT", "Product and warehouse IDs are required")
	}

	own := snap.Records[RecordKey{ProductID: productID, WarehouseID: warehouseID}]

	if own != nil && own.CalculationType != nil && *own.CalculationType != stock.CalculationTypeInherited {
		return decisionFromType(*own.CalculationType, own.AnalyzedPeriod, SourceProduct)
	}

	// Type 0 and unset both defer to the parent product, but only variants
	// have a parent to defer to.
	if own != nil && own.CalculationType != nil && *own.CalculationType == stock.CalculationTypeInherited {
		if _, isVariant := snap.ParentProducts[productID]; !isVariant {
			return Decision{}, shared.NewDomainError("INVALID_CALCULATION_TYPE", "Inherited calculation type is only valid for variants")
		}
	}

	if parentID, isVariant := snap.ParentProducts[productID]; isVariant {
		parent := snap.Records[RecordKey{ProductID: parentID, WarehouseID: warehouseID}]
		if parent != nil && parent.CalculationType != nil && *parent.CalculationType != stock.CalculationTypeInherited {
			return decisionFromType(*parent.CalculationType, parent.AnalyzedPeriod, SourceParent)
		}
	}

	if calcType, ok := warehouseDefault(snap, warehouseID); ok {
		period := analyzedPeriodOf(own)
		return decisionFromType(calcType, period, SourceWarehouse)
	}

	return decisionFromType(snap.GlobalDefault, analyzedPeriodOf(own), SourceGlobal)
}

// warehouseDefault walks up the warehouse hierarchy until a node with a
// transfer default calculation type is found
func warehouseDefault(snap Snapshot, warehouseID uuid.UUID) (int, bool) {
	seen := make(map[uuid.UUID]bool)

	current := warehouseID
	for current != uuid.Nil && !seen[current] {
		seen[current] = true

		node := snap.Warehouses[current]
		if node == nil {
			return 0, false
		}
		if node.TransferDefaultCalculationType != nil {
			return *node.TransferDefaultCalculationType, true
		}
		if node.ParentWarehouseID == nil {
			return 0, false
		}
		current = *node.ParentWarehouseID
	}

	return 0, false
}

func decisionFromType(calcType int, analyzedPeriod *int, source Source) (Decision, error) {
	switch {
	case calcType == stock.CalculationTypeAutomatic:
		if analyzedPeriod == nil || *analyzedPeriod <= 0 {
			return Decision{}, shared.NewDomainError("MISSING_ANALYZED_PERIOD", "Automatic calculation requires a positive analyzed period")
		}
		return Decision{
			Kind:            KindAutomatic,
			CalculationType: calcType,
			AnalyzedPeriod:  analyzedPeriod,
			Source:          source,
		}, nil
	case calcType >= stock.CalculationTypeManualMin && calcType <= stock.CalculationTypeManualMax:
		return Decision{
			Kind:            KindManual,
			CalculationType: calcType,
			Source:          source,
		}, nil
	default:
		return Decision{}, shared.NewDomainError("INVALID_CALCULATION_TYPE", "Calculation type cannot be resolved to a concrete strategy")
	}
}

func analyzedPeriodOf(record *stock.WarehouseProduct) *int {
	if record == nil {
		return nil
	}
	return record.AnalyzedPeriod
}
