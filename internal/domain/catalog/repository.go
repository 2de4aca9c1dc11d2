package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByExternalID(ctx context.Context, externalID int64) (*Product, error)
	FindVariants(ctx context.Context, parentID uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}

// AttributeRepository defines persistence operations for attributes
type AttributeRepository interface {
	FindByName(ctx context.Context, name string) (*Attribute, error)
	Save(ctx context.Context, attribute *Attribute) error
}

// AttributeValueRepository defines persistence operations for attribute values
type AttributeValueRepository interface {
	FindByAttributeAndValue(ctx context.Context, attributeID uuid.UUID, value string) (*AttributeValue, error)
	Save(ctx context.Context, value *AttributeValue) error
}
