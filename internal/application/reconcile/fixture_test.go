package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stocksync/engine/internal/application/resolver"
	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/stock"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/infrastructure/cache"
	"github.com/stocksync/engine/internal/infrastructure/persistence"
)

// env wires processors against an in-memory database and an in-process lease
type env struct {
	db             *gorm.DB
	entities       *resolver.EntityResolver
	ledger         *stock.Ledger
	stockRecords   stock.StockRecordRepository
	warehouses     partner.WarehouseRepository
	replenishments stock.ReplenishmentRepository
	transfers      stock.TransferRepository
	takings        stock.StockTakingRepository
	runs           syncdomain.RunRepository
	failures       syncdomain.FailureLogRepository
	imports        syncdomain.OrderImportRepository
	lease          syncdomain.RunLease
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	entities := resolver.NewEntityResolver(
		persistence.NewGormProductRepository(db),
		persistence.NewGormAttributeRepository(db),
		persistence.NewGormAttributeValueRepository(db),
		persistence.NewGormCustomerRepository(db),
		persistence.NewGormAddressRepository(db),
		persistence.NewGormCountryRepository(db),
		persistence.NewGormSupplierRepository(db),
		persistence.NewGormCurrencyRepository(db),
		zap.NewNop(),
	)

	stockRecords := persistence.NewGormStockRecordRepository(db)

	return &env{
		db:             db,
		entities:       entities,
		ledger:         stock.NewLedger(stockRecords),
		stockRecords:   stockRecords,
		warehouses:     persistence.NewGormWarehouseRepository(db),
		replenishments: persistence.NewGormReplenishmentRepository(db),
		transfers:      persistence.NewGormTransferRepository(db),
		takings:        persistence.NewGormStockTakingRepository(db),
		runs:           persistence.NewGormRunRepository(db),
		failures:       persistence.NewGormFailureLogRepository(db),
		imports:        persistence.NewGormOrderImportRepository(db),
		lease:          cache.NewInMemoryRunLease(),
	}
}

func (e *env) addWarehouse(t *testing.T, code string, externalID int64) *partner.Warehouse {
	t.Helper()
	warehouse, err := partner.NewWarehouse(code, code)
	require.NoError(t, err)
	warehouse.ExternalID = &externalID
	require.NoError(t, e.warehouses.Save(context.Background(), warehouse))
	return warehouse
}

func (e *env) record(t *testing.T, productID, warehouseID uuid.UUID) *stock.StockRecord {
	t.Helper()
	record, err := e.stockRecords.FindByProductAndWarehouse(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	return record
}

func (e *env) productBySKU(t *testing.T, sku string) uuid.UUID {
	t.Helper()
	product, err := persistence.NewGormProductRepository(e.db).FindBySKU(context.Background(), sku)
	require.NoError(t, err)
	return product.ID
}

func (e *env) lastRun(t *testing.T) syncdomain.Run {
	t.Helper()
	runs, err := e.runs.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	return runs[0]
}

// fakeGateway serves canned legacy rows with the same incremental-pull
// semantics as the real gateway
type fakeGateway struct {
	replenishments []syncdomain.ReplenishmentRow
	transfers      []syncdomain.TransferRow
	takings        []syncdomain.StockTakingRow
	invoices       map[syncdomain.InvoiceKey]int64
}

func (g *fakeGateway) FetchReplenishmentsSince(_ context.Context, sinceExternalID int64) ([]syncdomain.ReplenishmentRow, error) {
	var out []syncdomain.ReplenishmentRow
	for _, row := range g.replenishments {
		if row.ExternalID > sinceExternalID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (g *fakeGateway) FetchTransfersSince(_ context.Context, sinceExternalID int64) ([]syncdomain.TransferRow, error) {
	var out []syncdomain.TransferRow
	for _, row := range g.transfers {
		if row.ExternalID > sinceExternalID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (g *fakeGateway) FetchStockTakingsSince(_ context.Context, since time.Time) ([]syncdomain.StockTakingRow, error) {
	var out []syncdomain.StockTakingRow
	for _, row := range g.takings {
		if row.TakenAt.After(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (g *fakeGateway) FindReplenishmentByInvoice(_ context.Context, key syncdomain.InvoiceKey) (int64, bool, error) {
	id, ok := g.invoices[key]
	return id, ok, nil
}

// fakePlatform serves canned storefront orders in a single page
type fakePlatform struct {
	code    string
	channel int64
	orders  []syncdomain.OrderRow
}

func (p *fakePlatform) Code() string          { return p.code }
func (p *fakePlatform) SalesChannelID() int64 { return p.channel }

func (p *fakePlatform) PullOrders(_ context.Context, _ *syncdomain.OrderPullRequest) (*syncdomain.OrderPullResponse, error) {
	return &syncdomain.OrderPullResponse{Orders: p.orders, HasMore: false}, nil
}

func productRef(externalID, sku, name string) syncdomain.ProductRef {
	return syncdomain.ProductRef{ExternalID: externalID, SKU: sku, Name: name}
}
