package partner

import (
	"strings"
	"time"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Supplier represents a goods supplier, resolved by name.
type Supplier struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	ContactName string `gorm:"type:varchar(100)"`
	Phone       string `gorm:"type:varchar(50)"`
	Email       string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(name string) (*Supplier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
	}, nil
}

// UpdateContact updates supplier contact details
func (s *Supplier) UpdateContact(contactName, phone, email string) {
	s.ContactName = contactName
	s.Phone = phone
	s.Email = email
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Currency is a reference entity resolved by its ISO code.
type Currency struct {
	shared.BaseAggregateRoot
	Code string `gorm:"type:varchar(3);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Currency) TableName() string {
	return "currencies"
}

// NewCurrency creates a new currency
func NewCurrency(code, name string) (*Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY_CODE", "Currency code must be three letters")
	}

	return &Currency{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
	}, nil
}
