package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// TransferBatch records one inter-warehouse movement imported from the
// legacy platform. The natural key is the external transfer id.
type TransferBatch struct {
	shared.BaseAggregateRoot
	ExternalID      int64     `gorm:"not null;uniqueIndex"`
	FromWarehouseID uuid.UUID `gorm:"type:uuid;not null;index"`
	ToWarehouseID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TransferredAt   time.Time `gorm:"not null"`

	Items []TransferItem `gorm:"foreignKey:BatchID;references:ID"`
}

// TableName returns the table name for GORM
func (TransferBatch) TableName() string {
	return "stock_transfers"
}

// NewTransferBatch creates a new transfer batch
func NewTransferBatch(externalID int64, fromWarehouseID, toWarehouseID uuid.UUID, transferredAt time.Time) (*TransferBatch, error) {
	if externalID <= 0 {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External transfer ID must be positive")
	}
	if fromWarehouseID == uuid.Nil || toWarehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Both warehouses are required")
	}
	if fromWarehouseID == toWarehouseID {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Sending and receiving warehouse must differ")
	}

	return &TransferBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalID:        externalID,
		FromWarehouseID:   fromWarehouseID,
		ToWarehouseID:     toWarehouseID,
		TransferredAt:     transferredAt,
		Items:             make([]TransferItem, 0),
	}, nil
}

// AddItem appends a movement line to the batch
func (b *TransferBatch) AddItem(productID uuid.UUID, quantity int64) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Transferred quantity must be positive")
	}

	b.Items = append(b.Items, TransferItem{
		ID:        uuid.New(),
		BatchID:   b.ID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	})
	b.UpdatedAt = time.Now()
	return nil
}

// TransferItem is one movement line in a transfer batch
type TransferItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BatchID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int64     `gorm:"not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (TransferItem) TableName() string {
	return "stock_transfer_products"
}
