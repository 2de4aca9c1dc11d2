package persistence

import (
	"gorm.io/gorm"

	"github.com/stocksync/engine/internal/domain/catalog"
	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/stock"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// AllModels returns every persisted aggregate, ordered so foreign key
// targets migrate before their referents.
func AllModels() []any {
	return []any{
		&partner.Country{},
		&partner.Currency{},
		&partner.Supplier{},
		&partner.Warehouse{},
		&partner.Customer{},
		&partner.Address{},
		&catalog.Attribute{},
		&catalog.AttributeValue{},
		&catalog.Product{},
		&catalog.ProductAttributeValue{},
		&stock.StockRecord{},
		&stock.WarehouseProduct{},
		&stock.ReplenishmentBatch{},
		&stock.ReplenishmentItem{},
		&stock.TransferBatch{},
		&stock.TransferItem{},
		&stock.StockTakingBatch{},
		&stock.StockTakingItem{},
		&syncdomain.Run{},
		&syncdomain.FailureLog{},
		&syncdomain.OrderImport{},
	}
}

// AutoMigrate creates or updates the schema for all models. SQL
// migrations own the production schema; this backs tests and local
// bootstrap.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
