package catalog

import (
	"github.com/stocksync/engine/internal/domain/shared"
)

// Event types for the catalog context
const (
	EventTypeProductCreated = "catalog.product.created"
)

// ProductCreatedEvent is emitted when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	IsVariant bool   `json:"is_variant"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", product.ID),
		SKU:             product.SKU,
		Name:            product.Name,
		IsVariant:       product.IsVariant(),
	}
}
