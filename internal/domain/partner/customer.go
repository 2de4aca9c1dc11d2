package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/domain/shared"
)

// Customer represents a buyer imported from an external sales channel.
// All customers sharing an email form one account family: the first customer
// created for an email has no parent, and every later channel-specific
// customer for that email points at the first through ParentCustomerID.
// The natural key is (email, sales channel).
type Customer struct {
	shared.BaseAggregateRoot
	Email            string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_customer_email_channel,priority:1"`
	SalesChannelID   int64      `gorm:"not null;uniqueIndex:idx_customer_email_channel,priority:2"`
	Name             string     `gorm:"type:varchar(200)"`
	Phone            string     `gorm:"type:varchar(50)"`
	ParentCustomerID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new account-family head for an email
func NewCustomer(email string, salesChannelID int64, name string) (*Customer, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if salesChannelID <= 0 {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Sales channel ID must be positive")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             normalizeEmail(email),
		SalesChannelID:    salesChannelID,
		Name:              name,
	}, nil
}

// NewChildCustomer creates a channel-specific customer under an existing
// account-family head
func NewChildCustomer(head *Customer, salesChannelID int64, name string) (*Customer, error) {
	if head == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Account family head is required")
	}
	if head.ParentCustomerID != nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Account family head cannot itself have a parent")
	}

	customer, err := NewCustomer(head.Email, salesChannelID, name)
	if err != nil {
		return nil, err
	}

	headID := head.ID
	customer.ParentCustomerID = &headID

	return customer, nil
}

// IsFamilyHead reports whether this customer is the head of its account family
func (c *Customer) IsFamilyHead() bool {
	return c.ParentCustomerID == nil
}

// UpdateContact updates the customer's display name and phone
func (c *Customer) UpdateContact(name, phone string) {
	c.Name = name
	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Email must contain @")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
