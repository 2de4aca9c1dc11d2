package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// GormRunRepository implements RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Save creates or updates a sync run
func (r *GormRunRepository) Save(ctx context.Context, run *syncdomain.Run) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// Recent returns the most recent runs, newest first
func (r *GormRunRepository) Recent(ctx context.Context, limit int) ([]syncdomain.Run, error) {
	var runs []syncdomain.Run
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// GormFailureLogRepository implements FailureLogRepository using GORM
type GormFailureLogRepository struct {
	db *gorm.DB
}

// NewGormFailureLogRepository creates a new GormFailureLogRepository
func NewGormFailureLogRepository(db *gorm.DB) *GormFailureLogRepository {
	return &GormFailureLogRepository{db: db}
}

// Save creates a failure log entry
func (r *GormFailureLogRepository) Save(ctx context.Context, entry *syncdomain.FailureLog) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// RecentByType returns the most recent failure entries for a sync type, newest first
func (r *GormFailureLogRepository) RecentByType(ctx context.Context, syncType syncdomain.Type, limit int) ([]syncdomain.FailureLog, error) {
	var entries []syncdomain.FailureLog
	if err := r.db.WithContext(ctx).
		Where("sync_type = ?", syncType).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GormOrderImportRepository implements OrderImportRepository using GORM
type GormOrderImportRepository struct {
	db *gorm.DB
}

// NewGormOrderImportRepository creates a new GormOrderImportRepository
func NewGormOrderImportRepository(db *gorm.DB) *GormOrderImportRepository {
	return &GormOrderImportRepository{db: db}
}

// Exists checks whether an order was already imported for a channel
func (r *GormOrderImportRepository) Exists(ctx context.Context, salesChannelID int64, externalOrderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&syncdomain.OrderImport{}).
		Where("sales_channel_id = ? AND external_order_id = ?", salesChannelID, externalOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestPlacedAt returns the placement time of the newest imported order for a channel
func (r *GormOrderImportRepository) LatestPlacedAt(ctx context.Context, salesChannelID int64) (time.Time, error) {
	var record syncdomain.OrderImport
	err := r.db.WithContext(ctx).
		Where("sales_channel_id = ?", salesChannelID).
		Order("placed_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return record.PlacedAt, nil
}

// Save creates an order import marker
func (r *GormOrderImportRepository) Save(ctx context.Context, record *syncdomain.OrderImport) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Ensure the repositories implement their domain interfaces
var (
	_ syncdomain.RunRepository         = (*GormRunRepository)(nil)
	_ syncdomain.FailureLogRepository  = (*GormFailureLogRepository)(nil)
	_ syncdomain.OrderImportRepository = (*GormOrderImportRepository)(nil)
)
