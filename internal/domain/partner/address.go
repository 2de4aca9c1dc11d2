package partner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Address is a postal address attached to a customer.
// The natural key is (country, city, street, postal code, customer).
type Address struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_address_tuple,priority:5"`
	CountryID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_address_tuple,priority:1"`
	City       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_address_tuple,priority:2"`
	Street     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_address_tuple,priority:3"`
	PostalCode string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_address_tuple,priority:4"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// NewAddress creates a new address for a customer
func NewAddress(customerID, countryID uuid.UUID, city, street, postalCode string) (*Address, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if countryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Country ID cannot be empty")
	}
	if strings.TrimSpace(city) == "" {
		return nil, shared.NewDomainError("INVALID_CITY", "City cannot be empty")
	}
	if strings.TrimSpace(street) == "" {
		return nil, shared.NewDomainError("INVALID_STREET", "Street cannot be empty")
	}

	return &Address{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		CountryID:         countryID,
		City:              strings.TrimSpace(city),
		Street:            strings.TrimSpace(street),
		PostalCode:        strings.TrimSpace(postalCode),
	}, nil
}

// Country is a reference entity resolved by its ISO code.
type Country struct {
	shared.BaseAggregateRoot
	Code string `gorm:"type:varchar(2);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (Country) TableName() string {
	return "countries"
}

// NewCountry creates a new country
func NewCountry(code, name string) (*Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return nil, shared.NewDomainError("INVALID_COUNTRY_CODE", "Country code must be two letters")
	}

	return &Country{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
	}, nil
}
