package policy

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/catalog"
	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/shared"
	"github.com/stocksync/engine/internal/domain/stock"
)

// Service loads the minimal snapshot needed to resolve the replenishment
// policy for one (product, warehouse) and delegates the classification to
// the pure Resolve function. Replenishment planning consults it per
// product, not per sync row.
type Service struct {
	records       stock.WarehouseProductRepository
	products      catalog.ProductRepository
	warehouses    partner.WarehouseRepository
	globalDefault int
}

// NewService creates a new policy service
func NewService(
	records stock.WarehouseProductRepository,
	products catalog.ProductRepository,
	warehouses partner.WarehouseRepository,
	globalDefault int,
) *Service {
	return &Service{
		records:       records,
		products:      products,
		warehouses:    warehouses,
		globalDefault: globalDefault,
	}
}

// ResolveFor resolves the effective policy for a product at a warehouse
func (s *Service) ResolveFor(ctx context.Context, productID, warehouseID uuid.UUID) (Decision, error) {
	snap := Snapshot{
		Records:        make(map[RecordKey]*stock.WarehouseProduct),
		ParentProducts: make(map[uuid.UUID]uuid.UUID),
		Warehouses:     make(map[uuid.UUID]*partner.Warehouse),
		GlobalDefault:  s.globalDefault,
	}

	if err := s.loadRecord(ctx, &snap, productID, warehouseID); err != nil {
		return Decision{}, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Decision{}, err
	}
	if product.IsVariant() {
		snap.ParentProducts[productID] = *product.ParentProductID
		if err := s.loadRecord(ctx, &snap, *product.ParentProductID, warehouseID); err != nil {
			return Decision{}, err
		}
	}

	warehouses, err := s.warehouses.FindAll(ctx)
	if err != nil {
		return Decision{}, err
	}
	for i := range warehouses {
		snap.Warehouses[warehouses[i].ID] = &warehouses[i]
	}

	return Resolve(snap, productID, warehouseID)
}

// loadRecord loads one warehouse-product record into the snapshot; a
// missing record is not an error, it just resolves further down the chain
func (s *Service) loadRecord(ctx context.Context, snap *Snapshot, productID, warehouseID uuid.UUID) error {
	record, err := s.records.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	snap.Records[RecordKey{ProductID: productID, WarehouseID: warehouseID}] = record
	return nil
}
