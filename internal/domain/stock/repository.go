package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StockRecordRepository defines persistence operations for stock records
type StockRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockRecord, error)
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*StockRecord, error)
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]StockRecord, error)
	Save(ctx context.Context, record *StockRecord) error
}

// WarehouseProductRepository defines persistence operations for
// warehouse-product replenishment settings
type WarehouseProductRepository interface {
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*WarehouseProduct, error)
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]WarehouseProduct, error)
	Save(ctx context.Context, record *WarehouseProduct) error
}

// ReplenishmentRepository defines persistence operations for replenishment batches
type ReplenishmentRepository interface {
	ExistsByNaturalKey(ctx context.Context, invoiceNumber string, invoiceDate time.Time) (bool, error)
	// RecentKeys returns the natural keys of the most recently imported
	// batches, newest first, at most limit entries. It backs the watermark
	// resume-point search.
	RecentKeys(ctx context.Context, limit int) ([]ReplenishmentKey, error)
	Save(ctx context.Context, batch *ReplenishmentBatch) error
}

// TransferRepository defines persistence operations for transfer batches
type TransferRepository interface {
	ExistsByExternalID(ctx context.Context, externalID int64) (bool, error)
	// MaxExternalID returns the highest external transfer id imported so
	// far, or 0 when no transfer has been imported yet.
	MaxExternalID(ctx context.Context) (int64, error)
	Save(ctx context.Context, batch *TransferBatch) error
}

// StockTakingRepository defines persistence operations for stock taking batches
type StockTakingRepository interface {
	ExistsByNaturalKey(ctx context.Context, externalWarehouseID int64, takenAt time.Time) (bool, error)
	// LatestTakenAt returns the timestamp of the most recent imported
	// taking, or the zero time when none has been imported yet.
	LatestTakenAt(ctx context.Context) (time.Time, error)
	Save(ctx context.Context, batch *StockTakingBatch) error
}
