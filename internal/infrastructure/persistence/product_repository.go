package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocksync/engine/internal/domain/catalog"
	"github.com/stocksync/engine/internal/domain/shared"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("AttributeValues").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKU finds a product by its SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("AttributeValues").
		Where("sku = ?", sku).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByExternalID finds a product by its external legacy id
func (r *GormProductRepository) FindByExternalID(ctx context.Context, externalID int64) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindVariants finds all variant products of a parent
func (r *GormProductRepository) FindVariants(ctx context.Context, parentID uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("parent_product_id = ?", parentID).
		Order("sku ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// GormAttributeRepository implements AttributeRepository using GORM
type GormAttributeRepository struct {
	db *gorm.DB
}

// NewGormAttributeRepository creates a new GormAttributeRepository
func NewGormAttributeRepository(db *gorm.DB) *GormAttributeRepository {
	return &GormAttributeRepository{db: db}
}

// FindByName finds an attribute by its name
func (r *GormAttributeRepository) FindByName(ctx context.Context, name string) (*catalog.Attribute, error) {
	var attribute catalog.Attribute
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&attribute).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &attribute, nil
}

// Save creates or updates an attribute
func (r *GormAttributeRepository) Save(ctx context.Context, attribute *catalog.Attribute) error {
	return r.db.WithContext(ctx).Save(attribute).Error
}

// GormAttributeValueRepository implements AttributeValueRepository using GORM
type GormAttributeValueRepository struct {
	db *gorm.DB
}

// NewGormAttributeValueRepository creates a new GormAttributeValueRepository
func NewGormAttributeValueRepository(db *gorm.DB) *GormAttributeValueRepository {
	return &GormAttributeValueRepository{db: db}
}

// FindByAttributeAndValue finds an attribute value by its attribute and literal value
func (r *GormAttributeValueRepository) FindByAttributeAndValue(ctx context.Context, attributeID uuid.UUID, value string) (*catalog.AttributeValue, error) {
	var attributeValue catalog.AttributeValue
	if err := r.db.WithContext(ctx).
		Where("attribute_id = ? AND value = ?", attributeID, value).
		First(&attributeValue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &attributeValue, nil
}

// Save creates or updates an attribute value
func (r *GormAttributeValueRepository) Save(ctx context.Context, value *catalog.AttributeValue) error {
	return r.db.WithContext(ctx).Save(value).Error
}

// Ensure the repositories implement their domain interfaces
var (
	_ catalog.ProductRepository        = (*GormProductRepository)(nil)
	_ catalog.AttributeRepository      = (*GormAttributeRepository)(nil)
	_ catalog.AttributeValueRepository = (*GormAttributeValueRepository)(nil)
)
