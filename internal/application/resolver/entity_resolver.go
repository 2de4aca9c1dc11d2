package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/engine/internal/domain/catalog"
	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/shared"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// EntityResolver performs get-or-create resolution for catalog and party
// entities referenced by external natural keys. Every resolve is query by
// natural key, then create on miss. The underlying store does not enforce
// uniqueness for all of these keys, so a concurrent duplicate creation is
// possible; that rare outcome is accepted and bounded by the batch-level
// natural-key idempotency in the processors.
type EntityResolver struct {
	products        catalog.ProductRepository
	attributes      catalog.AttributeRepository
	attributeValues catalog.AttributeValueRepository
	customers       partner.CustomerRepository
	addresses       partner.AddressRepository
	countries       partner.CountryRepository
	suppliers       partner.SupplierRepository
	currencies      partner.CurrencyRepository
	logger          *zap.Logger
}

// NewEntityResolver creates a new entity resolver
func NewEntityResolver(
	products catalog.ProductRepository,
	attributes catalog.AttributeRepository,
	attributeValues catalog.AttributeValueRepository,
	customers partner.CustomerRepository,
	addresses partner.AddressRepository,
	countries partner.CountryRepository,
	suppliers partner.SupplierRepository,
	currencies partner.CurrencyRepository,
	logger *zap.Logger,
) *EntityResolver {
	return &EntityResolver{
		products:        products,
		attributes:      attributes,
		attributeValues: attributeValues,
		customers:       customers,
		addresses:       addresses,
		countries:       countries,
		suppliers:       suppliers,
		currencies:      currencies,
		logger:          logger,
	}
}

// ResolveAttribute resolves an attribute by name, creating it on first sight
func (r *EntityResolver) ResolveAttribute(ctx context.Context, name string) (uuid.UUID, error) {
	attribute, err := r.attributes.FindByName(ctx, name)
	if err == nil {
		return attribute.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	attribute, err = catalog.NewAttribute(name)
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.attributes.Save(ctx, attribute); err != nil {
		return uuid.Nil, err
	}

	r.logger.Info("Created attribute", zap.String("name", name), zap.String("id", attribute.ID.String()))
	return attribute.ID, nil
}

// ResolveAttributeValue resolves a value of an attribute, creating both the
// attribute and the value on first sight
func (r *EntityResolver) ResolveAttributeValue(ctx context.Context, attributeName, value string) (uuid.UUID, error) {
	attributeID, err := r.ResolveAttribute(ctx, attributeName)
	if err != nil {
		return uuid.Nil, err
	}

	attributeValue, err := r.attributeValues.FindByAttributeAndValue(ctx, attributeID, value)
	if err == nil {
		return attributeValue.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	attributeValue, err = catalog.NewAttributeValue(attributeID, value)
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.attributeValues.Save(ctx, attributeValue); err != nil {
		return uuid.Nil, err
	}

	r.logger.Info("Created attribute value",
		zap.String("attribute", attributeName),
		zap.String("value", value),
		zap.String("id", attributeValue.ID.String()),
	)
	return attributeValue.ID, nil
}

// ResolveProduct resolves the product an external row references. A plain
// external id resolves to a parent product; a composite id of the form
// "{parentExternalId}_{attributeComboId}" resolves the parent first (by
// parent SKU), then creates the variant with its attribute value attached.
func (r *EntityResolver) ResolveProduct(ctx context.Context, ref syncdomain.ProductRef) (uuid.UUID, error) {
	if ref.SKU == "" {
		return uuid.Nil, fmt.Errorf("%w: product reference without SKU", syncdomain.ErrValidation)
	}

	product, err := r.products.FindBySKU(ctx, ref.SKU)
	if err == nil {
		return product.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	if !ref.IsVariant() {
		return r.createParentProduct(ctx, ref)
	}
	return r.createVariantProduct(ctx, ref)
}

func (r *EntityResolver) createParentProduct(ctx context.Context, ref syncdomain.ProductRef) (uuid.UUID, error) {
	product, err := catalog.NewProduct(ref.SKU, ref.Name)
	if err != nil {
		return uuid.Nil, err
	}

	if externalID, ok := parseExternalID(ref.ParentExternalID()); ok {
		product.SetExternalID(externalID)
	}

	if err := r.products.Save(ctx, product); err != nil {
		return uuid.Nil, err
	}

	r.logger.Info("Created parent product",
		zap.String("sku", ref.SKU),
		zap.String("external_id", ref.ExternalID),
		zap.String("id", product.ID.String()),
	)
	return product.ID, nil
}

func (r *EntityResolver) createVariantProduct(ctx context.Context, ref syncdomain.ProductRef) (uuid.UUID, error) {
	if ref.ParentSKU == "" {
		return uuid.Nil, fmt.Errorf("%w: variant %q without parent SKU", syncdomain.ErrValidation, ref.ExternalID)
	}

	parent, err := r.products.FindBySKU(ctx, ref.ParentSKU)
	if errors.Is(err, shared.ErrNotFound) {
		// The parent has not been imported yet; create it from what the
		// row carries so the variant has somewhere to hang.
		parentID, createErr := r.createParentProduct(ctx, syncdomain.ProductRef{
			ExternalID: ref.ParentExternalID(),
			SKU:        ref.ParentSKU,
			Name:       ref.Name,
		})
		if createErr != nil {
			return uuid.Nil, createErr
		}
		parent, err = r.products.FindByID(ctx, parentID)
	}
	if err != nil {
		return uuid.Nil, err
	}

	variant, err := catalog.NewVariant(parent, ref.SKU, ref.Name)
	if err != nil {
		return uuid.Nil, err
	}

	if ref.AttributeName != "" && ref.AttributeValue != "" {
		valueID, err := r.ResolveAttributeValue(ctx, ref.AttributeName, ref.AttributeValue)
		if err != nil {
			return uuid.Nil, err
		}
		if err := variant.LinkAttributeValue(valueID); err != nil {
			return uuid.Nil, err
		}
	}

	if err := r.products.Save(ctx, variant); err != nil {
		return uuid.Nil, err
	}

	r.logger.Info("Created variant product",
		zap.String("sku", ref.SKU),
		zap.String("parent_sku", ref.ParentSKU),
		zap.String("external_id", ref.ExternalID),
		zap.String("id", variant.ID.String()),
	)
	return variant.ID, nil
}

// ResolveCustomer resolves a customer by (email, sales channel). The first
// customer seen for an email becomes the head of its account family; later
// channel-specific customers for the same email are created as children of
// that head. Each (email, channel) pair yields at most one customer row.
func (r *EntityResolver) ResolveCustomer(ctx context.Context, email string, salesChannelID int64, name string) (uuid.UUID, error) {
	customer, err := r.customers.FindByEmailAndChannel(ctx, email, salesChannelID)
	if err == nil {
		return customer.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	head, err := r.customers.FindFamilyHead(ctx, email)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		customer, err = partner.NewCustomer(email, salesChannelID, name)
	case err == nil:
		customer, err = partner.NewChildCustomer(head, salesChannelID, name)
	default:
		return uuid.Nil, err
	}
	if err != nil {
		return uuid.Nil, err
	}

	if err := r.customers.Save(ctx, customer); err != nil {
		return uuid.Nil, err
	}

	r.logger.Info("Created customer",
		zap.String("email", email),
		zap.Int64("sales_channel_id", salesChannelID),
		zap.Bool("family_head", customer.IsFamilyHead()),
		zap.String("id", customer.ID.String()),
	)
	return customer.ID, nil
}

// ResolveAddress resolves an address by its full tuple for a customer
func (r *EntityResolver) ResolveAddress(ctx context.Context, customerID uuid.UUID, countryCode, city, street, postalCode string) (uuid.UUID, error) {
	countryID, err := r.ResolveCountry(ctx, countryCode)
	if err != nil {
		return uuid.Nil, err
	}

	address, err := r.addresses.FindByTuple(ctx, countryID, city, street, postalCode, customerID)
	if err == nil {
		return address.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	address, err = partner.NewAddress(customerID, countryID, city, street, postalCode)
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.addresses.Save(ctx, address); err != nil {
		return uuid.Nil, err
	}
	return address.ID, nil
}

// ResolveCountry resolves a country by its two-letter code
func (r *EntityResolver) ResolveCountry(ctx context.Context, code string) (uuid.UUID, error) {
	country, err := r.countries.FindByCode(ctx, code)
	if err == nil {
		return country.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	country, err = partner.NewCountry(code, code)
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.countries.Save(ctx, country); err != nil {
		return uuid.Nil, err
	}
	return country.ID, nil
}

// ResolveSupplier resolves a supplier by name
func (r *EntityResolver) ResolveSupplier(ctx context.Context, name string) (uuid.UUID, error) {
	supplier, err := r.suppliers.FindByName(ctx, name)
	if err == nil {
		return supplier.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	supplier, err = partner.NewSupplier(name)
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.suppliers.Save(ctx, supplier); err != nil {
		return uuid.Nil, err
	}

	r.logger.Info("Created supplier", zap.String("name", name), zap.String("id", supplier.ID.String()))
	return supplier.ID, nil
}

// ResolveCurrency resolves a currency by its three-letter code
func (r *EntityResolver) ResolveCurrency(ctx context.Context, code string) (uuid.UUID, error) {
	currency, err := r.currencies.FindByCode(ctx, code)
	if err == nil {
		return currency.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	currency, err = partner.NewCurrency(code, code)
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.currencies.Save(ctx, currency); err != nil {
		return uuid.Nil, err
	}
	return currency.ID, nil
}

func parseExternalID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
