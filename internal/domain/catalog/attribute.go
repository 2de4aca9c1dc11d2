package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Attribute groups attribute values under a common name (e.g. "Color").
type Attribute struct {
	shared.BaseAggregateRoot
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Attribute) TableName() string {
	return "attributes"
}

// NewAttribute creates a new attribute
func NewAttribute(name string) (*Attribute, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Attribute name cannot be empty")
	}

	return &Attribute{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
	}, nil
}

// AttributeValue is one concrete value of an attribute (e.g. Color=Red).
// The (attribute, value) pair is the natural key.
type AttributeValue struct {
	shared.BaseAggregateRoot
	AttributeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attribute_value,priority:1"`
	Value       string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_attribute_value,priority:2"`
	ExternalID  *int64    `gorm:"index"` // id of this value on the legacy platform, when known
}

// TableName returns the table name for GORM
func (AttributeValue) TableName() string {
	return "attribute_values"
}

// NewAttributeValue creates a new value under an attribute
func NewAttributeValue(attributeID uuid.UUID, value string) (*AttributeValue, error) {
	if attributeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ATTRIBUTE", "Attribute ID cannot be empty")
	}
	if strings.TrimSpace(value) == "" {
		return nil, shared.NewDomainError("INVALID_VALUE", "Attribute value cannot be empty")
	}

	return &AttributeValue{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AttributeID:       attributeID,
		Value:             strings.TrimSpace(value),
	}, nil
}
