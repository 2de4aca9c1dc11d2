package sync

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductRef is how external rows reference a product. ExternalID is the
// composite external identifier: a parent product is referenced as its own
// external id, a variant as "{parentExternalId}_{attributeComboId}".
type ProductRef struct {
	ExternalID     string
	SKU            string
	ParentSKU      string
	Name           string
	AttributeName  string // distinguishing attribute, e.g. "Color" (variants only)
	AttributeValue string // concrete value, e.g. "Red" (variants only)
}

// IsVariant reports whether the reference carries a composite external id
func (r ProductRef) IsVariant() bool {
	parent, _, found := strings.Cut(r.ExternalID, "_")
	return found && parent != r.ExternalID
}

// ParentExternalID returns the parent part of the composite external id.
// For a parent product reference it returns the id itself.
func (r ProductRef) ParentExternalID() string {
	parent, _, _ := strings.Cut(r.ExternalID, "_")
	return parent
}

// ReplenishmentRow is one supplier delivery as read from the legacy database
type ReplenishmentRow struct {
	ExternalID          int64
	InvoiceNumber       string
	InvoiceDate         time.Time
	SupplierName        string
	CurrencyCode        string
	WarehouseExternalID int64
	Items               []ReplenishmentRowItem
}

// ReplenishmentRowItem is one delivery line of a replenishment row
type ReplenishmentRowItem struct {
	Product   ProductRef
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Key returns the invoice natural key of the row
func (r ReplenishmentRow) Key() InvoiceKey {
	return InvoiceKey{Number: r.InvoiceNumber, Date: r.InvoiceDate}
}

// TransferRow is one inter-warehouse movement as read from the legacy database
type TransferRow struct {
	ExternalID              int64
	FromWarehouseExternalID int64
	ToWarehouseExternalID   int64
	TransferredAt           time.Time
	Items                   []TransferRowItem
}

// TransferRowItem is one movement line of a transfer row
type TransferRowItem struct {
	Product  ProductRef
	Quantity int64
}

// StockTakingRow is one physical count as read from the legacy database
type StockTakingRow struct {
	WarehouseExternalID int64
	TakenAt             time.Time
	Items               []StockTakingRowItem
}

// StockTakingRowItem is one counted line of a stock taking row
type StockTakingRowItem struct {
	Product        ProductRef
	ObservedOnhand int64
}

// OrderRow is one order as pulled from a REST storefront
type OrderRow struct {
	ExternalID     string
	SalesChannelID int64
	Email          string
	CustomerName   string
	Phone          string
	CountryCode    string
	City           string
	Street         string
	PostalCode     string
	Status         OrderStatus
	PlacedAt       time.Time
	CurrencyCode   string
	Items          []OrderRowItem
}

// OrderRowItem is one line of a storefront order
type OrderRowItem struct {
	Product   ProductRef
	Quantity  int64
	UnitPrice decimal.Decimal
}

// OrderStatus is the storefront-side status of a pulled order
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)
