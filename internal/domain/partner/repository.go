package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmailAndChannel(ctx context.Context, email string, salesChannelID int64) (*Customer, error)
	// FindFamilyHead returns the oldest customer for an email, the head of
	// the account family, or shared.ErrNotFound when the email is new.
	FindFamilyHead(ctx context.Context, email string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}

// AddressRepository defines persistence operations for addresses
type AddressRepository interface {
	FindByTuple(ctx context.Context, countryID uuid.UUID, city, street, postalCode string, customerID uuid.UUID) (*Address, error)
	Save(ctx context.Context, address *Address) error
}

// CountryRepository defines persistence operations for countries
type CountryRepository interface {
	FindByCode(ctx context.Context, code string) (*Country, error)
	Save(ctx context.Context, country *Country) error
}

// SupplierRepository defines persistence operations for suppliers
type SupplierRepository interface {
	FindByName(ctx context.Context, name string) (*Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
}

// CurrencyRepository defines persistence operations for currencies
type CurrencyRepository interface {
	FindByCode(ctx context.Context, code string) (*Currency, error)
	Save(ctx context.Context, currency *Currency) error
}

// WarehouseRepository defines persistence operations for warehouses.
// The engine only reads warehouses; Save exists for bootstrap and tests.
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindByExternalID(ctx context.Context, externalID int64) (*Warehouse, error)
	FindAll(ctx context.Context) ([]Warehouse, error)
	Save(ctx context.Context, warehouse *Warehouse) error
}
