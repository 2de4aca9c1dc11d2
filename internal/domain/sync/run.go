package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Type identifies one kind of reconciliation run
type Type string

const (
	TypeReplenishment Type = "replenishment"
	TypeTransfer      Type = "transfer"
	TypeStockTaking   Type = "stock_taking"
	TypeOrder         Type = "order"
)

// IsValid checks if the type is a known sync type
func (t Type) IsValid() bool {
	switch t {
	case TypeReplenishment, TypeTransfer, TypeStockTaking, TypeOrder:
		return true
	}
	return false
}

// String returns the string representation of the sync type
func (t Type) String() string {
	return string(t)
}

// RunStatus is the lifecycle status of a reconciliation run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusSkipped   RunStatus = "SKIPPED" // lease held by another run
)

// Run records one reconciliation run and its summary counts. Per-row
// failures never fail the run; a failed run means the source itself was
// unreachable or no safe resume point existed.
type Run struct {
	shared.BaseAggregateRoot
	Type       Type      `gorm:"type:varchar(30);not null;index"`
	Status     RunStatus `gorm:"type:varchar(20);not null"`
	StartedAt  time.Time `gorm:"not null;index"`
	FinishedAt *time.Time
	Processed  int    `gorm:"not null;default:0"`
	Skipped    int    `gorm:"not null;default:0"`
	Failed     int    `gorm:"not null;default:0"`
	Error      string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Run) TableName() string {
	return "sync_runs"
}

// NewRun starts a new run record for a sync type
func NewRun(syncType Type) (*Run, error) {
	if !syncType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SYNC_TYPE", "Unknown sync type")
	}

	return &Run{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              syncType,
		Status:            RunStatusRunning,
		StartedAt:         time.Now(),
	}, nil
}

// Complete marks the run as succeeded with its summary counts
func (r *Run) Complete(processed, skipped, failed int) {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
	r.Processed = processed
	r.Skipped = skipped
	r.Failed = failed
	r.UpdatedAt = now
	r.IncrementVersion()
}

// Fail marks the run as failed at the top level
func (r *Run) Fail(err error) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	if err != nil {
		r.Error = err.Error()
	}
	r.UpdatedAt = now
	r.IncrementVersion()
}

// Skip marks the run as skipped because the lease was held elsewhere
func (r *Run) Skip() {
	now := time.Now()
	r.Status = RunStatusSkipped
	r.FinishedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
}

// Summary is the caller-facing result of a run
type Summary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// FailureLog is one persisted per-row failure, written so an operator can
// replay a single failed row without rerunning the batch.
type FailureLog struct {
	shared.BaseAggregateRoot
	SyncType    Type   `gorm:"type:varchar(30);not null;index"`
	ExternalRef string `gorm:"type:varchar(200);not null;index"` // natural key or external id of the failed row
	Payload     string `gorm:"type:text"`                        // the external row, serialized
	Reason      string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (FailureLog) TableName() string {
	return "sync_failure_logs"
}

// NewFailureLog creates a new failure log entry
func NewFailureLog(syncType Type, externalRef, payload, reason string) *FailureLog {
	return &FailureLog{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SyncType:          syncType,
		ExternalRef:       externalRef,
		Payload:           payload,
		Reason:            reason,
	}
}

// OrderImport marks a storefront order as imported. The (sales channel,
// external order id) pair is the idempotency guard for order processing.
type OrderImport struct {
	shared.BaseAggregateRoot
	SalesChannelID  int64     `gorm:"not null;uniqueIndex:idx_order_import_key,priority:1"`
	ExternalOrderID string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_import_key,priority:2"`
	CustomerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PlacedAt        time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (OrderImport) TableName() string {
	return "sync_order_imports"
}

// NewOrderImport creates a new order import marker
func NewOrderImport(salesChannelID int64, externalOrderID string, customerID uuid.UUID, placedAt time.Time) (*OrderImport, error) {
	if salesChannelID <= 0 {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Sales channel ID must be positive")
	}
	if externalOrderID == "" {
		return nil, shared.NewDomainError("INVALID_ORDER", "External order ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	return &OrderImport{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SalesChannelID:    salesChannelID,
		ExternalOrderID:   externalOrderID,
		CustomerID:        customerID,
		PlacedAt:          placedAt,
	}, nil
}

// RunRepository defines persistence operations for run records
type RunRepository interface {
	Save(ctx context.Context, run *Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// FailureLogRepository defines persistence operations for failure logs
type FailureLogRepository interface {
	Save(ctx context.Context, entry *FailureLog) error
	RecentByType(ctx context.Context, syncType Type, limit int) ([]FailureLog, error)
}

// OrderImportRepository defines persistence operations for order import markers
type OrderImportRepository interface {
	Exists(ctx context.Context, salesChannelID int64, externalOrderID string) (bool, error)
	// LatestPlacedAt returns the placement time of the most recently
	// imported order for a channel, or the zero time when none exists.
	LatestPlacedAt(ctx context.Context, salesChannelID int64) (time.Time, error)
	Save(ctx context.Context, record *OrderImport) error
}
