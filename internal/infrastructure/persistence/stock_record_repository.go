package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocksync/engine/internal/domain/shared"
	"github.com/stocksync/engine/internal/domain/stock"
)

// GormStockRecordRepository implements StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// FindByID finds a stock record by its ID
func (r *GormStockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProductAndWarehouse finds the stock record for a (product, warehouse) pair
func (r *GormStockRecordRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByWarehouse finds all stock records for a warehouse
func (r *GormStockRecordRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]stock.StockRecord, error) {
	var records []stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a stock record
func (r *GormStockRecordRepository) Save(ctx context.Context, record *stock.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// GormWarehouseProductRepository implements WarehouseProductRepository using GORM
type GormWarehouseProductRepository struct {
	db *gorm.DB
}

// NewGormWarehouseProductRepository creates a new GormWarehouseProductRepository
func NewGormWarehouseProductRepository(db *gorm.DB) *GormWarehouseProductRepository {
	return &GormWarehouseProductRepository{db: db}
}

// FindByProductAndWarehouse finds the replenishment settings for a (product, warehouse) pair
func (r *GormWarehouseProductRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*stock.WarehouseProduct, error) {
	var record stock.WarehouseProduct
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByWarehouse finds all replenishment settings for a warehouse
func (r *GormWarehouseProductRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]stock.WarehouseProduct, error) {
	var records []stock.WarehouseProduct
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a warehouse-product record
func (r *GormWarehouseProductRepository) Save(ctx context.Context, record *stock.WarehouseProduct) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Ensure the repositories implement their domain interfaces
var (
	_ stock.StockRecordRepository      = (*GormStockRecordRepository)(nil)
	_ stock.WarehouseProductRepository = (*GormWarehouseProductRepository)(nil)
)
