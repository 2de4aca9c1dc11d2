package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/stocksync/engine/internal/domain/stock"
)

// GormReplenishmentRepository implements ReplenishmentRepository using GORM
type GormReplenishmentRepository struct {
	db *gorm.DB
}

// NewGormReplenishmentRepository creates a new GormReplenishmentRepository
func NewGormReplenishmentRepository(db *gorm.DB) *GormReplenishmentRepository {
	return &GormReplenishmentRepository{db: db}
}

// ExistsByNaturalKey checks whether a batch with the invoice key was already imported
func (r *GormReplenishmentRepository) ExistsByNaturalKey(ctx context.Context, invoiceNumber string, invoiceDate time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.ReplenishmentBatch{}).
		Where("invoice_number = ? AND invoice_date = ?", invoiceNumber, invoiceDate).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecentKeys returns the invoice keys of the most recently imported batches, newest first
func (r *GormReplenishmentRepository) RecentKeys(ctx context.Context, limit int) ([]stock.ReplenishmentKey, error) {
	var keys []stock.ReplenishmentKey
	if err := r.db.WithContext(ctx).
		Model(&stock.ReplenishmentBatch{}).
		Select("invoice_number", "invoice_date").
		Order("invoice_date DESC, invoice_number DESC").
		Limit(limit).
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// Save creates or updates a replenishment batch and its items
func (r *GormReplenishmentRepository) Save(ctx context.Context, batch *stock.ReplenishmentBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// ExistsByExternalID checks whether a transfer with the external id was already imported
func (r *GormTransferRepository) ExistsByExternalID(ctx context.Context, externalID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.TransferBatch{}).
		Where("external_id = ?", externalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MaxExternalID returns the highest imported external transfer id, or 0
func (r *GormTransferRepository) MaxExternalID(ctx context.Context) (int64, error) {
	var batch stock.TransferBatch
	err := r.db.WithContext(ctx).
		Order("external_id DESC").
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return batch.ExternalID, nil
}

// Save creates or updates a transfer batch and its items
func (r *GormTransferRepository) Save(ctx context.Context, batch *stock.TransferBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// GormStockTakingRepository implements StockTakingRepository using GORM
type GormStockTakingRepository struct {
	db *gorm.DB
}

// NewGormStockTakingRepository creates a new GormStockTakingRepository
func NewGormStockTakingRepository(db *gorm.DB) *GormStockTakingRepository {
	return &GormStockTakingRepository{db: db}
}

// ExistsByNaturalKey checks whether a taking with the (warehouse, time) key was already imported
func (r *GormStockTakingRepository) ExistsByNaturalKey(ctx context.Context, externalWarehouseID int64, takenAt time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.StockTakingBatch{}).
		Where("external_warehouse_id = ? AND taken_at = ?", externalWarehouseID, takenAt).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestTakenAt returns the timestamp of the most recent imported taking, or the zero time
func (r *GormStockTakingRepository) LatestTakenAt(ctx context.Context) (time.Time, error) {
	var batch stock.StockTakingBatch
	err := r.db.WithContext(ctx).
		Order("taken_at DESC").
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return batch.TakenAt, nil
}

// Save creates or updates a stock taking batch and its items
func (r *GormStockTakingRepository) Save(ctx context.Context, batch *stock.StockTakingBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// Ensure the repositories implement their domain interfaces
var (
	_ stock.ReplenishmentRepository = (*GormReplenishmentRepository)(nil)
	_ stock.TransferRepository      = (*GormTransferRepository)(nil)
	_ stock.StockTakingRepository   = (*GormStockTakingRepository)(nil)
)
