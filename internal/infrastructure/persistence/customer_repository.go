package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/shared"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByEmailAndChannel finds a customer by the (email, sales channel) pair
func (r *GormCustomerRepository) FindByEmailAndChannel(ctx context.Context, email string, salesChannelID int64) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("email = ? AND sales_channel_id = ?", normalizeEmail(email), salesChannelID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindFamilyHead finds the oldest customer for an email across channels
func (r *GormCustomerRepository) FindFamilyHead(ctx context.Context, email string) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("email = ? AND parent_customer_id IS NULL", normalizeEmail(email)).
		Order("created_at ASC").
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByTuple finds an address by its full natural key
func (r *GormAddressRepository) FindByTuple(ctx context.Context, countryID uuid.UUID, city, street, postalCode string, customerID uuid.UUID) (*partner.Address, error) {
	var address partner.Address
	if err := r.db.WithContext(ctx).
		Where("country_id = ? AND city = ? AND street = ? AND postal_code = ? AND customer_id = ?",
			countryID, city, street, postalCode, customerID).
		First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &address, nil
}

// Save creates or updates an address
func (r *GormAddressRepository) Save(ctx context.Context, address *partner.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

// Ensure the repositories implement their domain interfaces
var (
	_ partner.CustomerRepository = (*GormCustomerRepository)(nil)
	_ partner.AddressRepository  = (*GormAddressRepository)(nil)
)
