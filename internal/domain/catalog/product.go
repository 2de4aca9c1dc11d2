package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Product represents a sellable product in the catalog.
// It is the aggregate root for product-related operations.
// A product with a non-nil ParentProductID is a variant: one concrete
// attribute combination (for example a specific color/size) of its parent.
type Product struct {
	shared.BaseAggregateRoot
	SKU             string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name            string     `gorm:"type:varchar(200);not null"`
	ExternalID      *int64     `gorm:"index"` // id of this product on the legacy platform, when known
	ParentProductID *uuid.UUID `gorm:"type:uuid;index"`

	// AttributeValues carry the combination that distinguishes a variant
	// from its siblings. Empty for parent products.
	AttributeValues []ProductAttributeValue `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new parent (base) product
func NewProduct(sku, name string) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.TrimSpace(sku),
		Name:              name,
		AttributeValues:   make([]ProductAttributeValue, 0),
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// NewVariant creates a variant product under the given parent
func NewVariant(parent *Product, sku, name string) (*Product, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent product is required for a variant")
	}
	if parent.IsVariant() {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent product cannot itself be a variant")
	}

	variant, err := NewProduct(sku, name)
	if err != nil {
		return nil, err
	}

	parentID := parent.ID
	variant.ParentProductID = &parentID

	return variant, nil
}

// IsVariant reports whether this product is a variant of a parent product
func (p *Product) IsVariant() bool {
	return p.ParentProductID != nil
}

// SetExternalID records the product id on the legacy platform
func (p *Product) SetExternalID(externalID int64) {
	p.ExternalID = &externalID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// LinkAttributeValue attaches an attribute value to this variant.
// Linking the same attribute value twice is a no-op.
func (p *Product) LinkAttributeValue(attributeValueID uuid.UUID) error {
	if !p.IsVariant() {
		return shared.NewDomainError("NOT_A_VARIANT", "Attribute values can only be linked to variants")
	}
	if attributeValueID == uuid.Nil {
		return shared.NewDomainError("INVALID_ATTRIBUTE_VALUE", "Attribute value ID cannot be empty")
	}

	for _, link := range p.AttributeValues {
		if link.AttributeValueID == attributeValueID {
			return nil
		}
	}

	p.AttributeValues = append(p.AttributeValues, NewProductAttributeValue(p.ID, attributeValueID))
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

func validateSKU(sku string) error {
	if strings.TrimSpace(sku) == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 100 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 100 characters")
	}
	return nil
}

// ProductAttributeValue is the join relation between a variant product and
// one of its distinguishing attribute values. It has no lifecycle of its own
// beyond the product it is attached to.
type ProductAttributeValue struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_attr_value,priority:1"`
	AttributeValueID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_attr_value,priority:2"`
	CreatedAt        time.Time
}

// TableName returns the table name for GORM
func (ProductAttributeValue) TableName() string {
	return "attribute_value_products"
}

// NewProductAttributeValue creates a new product-to-attribute-value link
func NewProductAttributeValue(productID, attributeValueID uuid.UUID) ProductAttributeValue {
	return ProductAttributeValue{
		ID:               uuid.New(),
		ProductID:        productID,
		AttributeValueID: attributeValueID,
		CreatedAt:        time.Now(),
	}
}
