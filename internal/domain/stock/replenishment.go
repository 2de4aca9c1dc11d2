package stock

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocksync/engine/internal/domain/shared"
)

// ReplenishmentBatch records one supplier delivery imported from the legacy
// platform. The natural key is (invoice number, invoice date): importing the
// same invoice twice must be a no-op.
type ReplenishmentBatch struct {
	shared.BaseAggregateRoot
	ExternalID    int64     `gorm:"not null;index"`
	InvoiceNumber string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_replenishment_invoice,priority:1"`
	InvoiceDate   time.Time `gorm:"not null;uniqueIndex:idx_replenishment_invoice,priority:2"`
	SupplierID    uuid.UUID `gorm:"type:uuid;not null;index"`
	WarehouseID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CurrencyID    *uuid.UUID `gorm:"type:uuid"`

	Items []ReplenishmentItem `gorm:"foreignKey:BatchID;references:ID"`
}

// TableName returns the table name for GORM
func (ReplenishmentBatch) TableName() string {
	return "stock_replenishments"
}

// NewReplenishmentBatch creates a new replenishment batch
func NewReplenishmentBatch(externalID int64, invoiceNumber string, invoiceDate time.Time, supplierID, warehouseID uuid.UUID) (*ReplenishmentBatch, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice number cannot be empty")
	}
	if invoiceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice date is required")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &ReplenishmentBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalID:        externalID,
		InvoiceNumber:     strings.TrimSpace(invoiceNumber),
		InvoiceDate:       invoiceDate,
		SupplierID:        supplierID,
		WarehouseID:       warehouseID,
		Items:             make([]ReplenishmentItem, 0),
	}, nil
}

// SetCurrency records the invoice currency
func (b *ReplenishmentBatch) SetCurrency(currencyID uuid.UUID) {
	b.CurrencyID = &currencyID
	b.UpdatedAt = time.Now()
}

// AddItem appends a delivery line to the batch
func (b *ReplenishmentBatch) AddItem(productID uuid.UUID, quantity int64, unitPrice decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Delivered quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	b.Items = append(b.Items, ReplenishmentItem{
		ID:        uuid.New(),
		BatchID:   b.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: time.Now(),
	})
	b.UpdatedAt = time.Now()
	return nil
}

// NaturalKey returns the idempotency key of this batch
func (b *ReplenishmentBatch) NaturalKey() ReplenishmentKey {
	return ReplenishmentKey{InvoiceNumber: b.InvoiceNumber, InvoiceDate: b.InvoiceDate}
}

// ReplenishmentKey is the natural key of a replenishment batch
type ReplenishmentKey struct {
	InvoiceNumber string
	InvoiceDate   time.Time
}

// ReplenishmentItem is one delivery line in a replenishment batch
type ReplenishmentItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BatchID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (ReplenishmentItem) TableName() string {
	return "stock_replenishment_products"
}
