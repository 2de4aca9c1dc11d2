package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stocksync/engine/internal/application/resolver"
	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/shared"
	"github.com/stocksync/engine/internal/domain/stock"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// ReplenishmentProcessor imports supplier deliveries from the legacy
// database. The resume point is found by correlating recently imported
// invoice keys against the source; each new row resolves its supplier,
// currency, warehouse and products, increments onhand stock, and is
// persisted under its invoice natural key as the idempotency guard.
type ReplenishmentProcessor struct {
	runner
	gateway    syncdomain.LegacyGateway
	entities   *resolver.EntityResolver
	ledger     *stock.Ledger
	batches    stock.ReplenishmentRepository
	warehouses partner.WarehouseRepository
}

// NewReplenishmentProcessor creates a new replenishment processor
func NewReplenishmentProcessor(
	gateway syncdomain.LegacyGateway,
	entities *resolver.EntityResolver,
	ledger *stock.Ledger,
	batches stock.ReplenishmentRepository,
	warehouses partner.WarehouseRepository,
	lease syncdomain.RunLease,
	runs syncdomain.RunRepository,
	failures syncdomain.FailureLogRepository,
	logger *zap.Logger,
) *ReplenishmentProcessor {
	return &ReplenishmentProcessor{
		runner:     newRunner(lease, runs, failures, logger),
		gateway:    gateway,
		entities:   entities,
		ledger:     ledger,
		batches:    batches,
		warehouses: warehouses,
	}
}

// Run executes one replenishment reconciliation run
func (p *ReplenishmentProcessor) Run(ctx context.Context) (syncdomain.Summary, error) {
	return p.execute(ctx, syncdomain.TypeReplenishment, p.reconcile)
}

func (p *ReplenishmentProcessor) reconcile(ctx context.Context) (syncdomain.Summary, error) {
	var summary syncdomain.Summary

	since, err := p.resumePoint(ctx)
	if err != nil {
		return summary, err
	}

	rows, err := p.gateway.FetchReplenishmentsSince(ctx, since)
	if err != nil {
		return summary, fmt.Errorf("fetch replenishments since %d: %w", since, err)
	}

	// Rows arrive in ascending external-id order and must be applied in
	// that order: later batches assume earlier ledger mutations.
	for _, row := range rows {
		exists, err := p.batches.ExistsByNaturalKey(ctx, row.InvoiceNumber, row.InvoiceDate)
		if err != nil {
			return summary, err
		}
		if exists {
			summary.Skipped++
			continue
		}

		if err := p.importRow(ctx, row); err != nil {
			summary.Failed++
			p.recordFailure(ctx, syncdomain.TypeReplenishment, row.InvoiceNumber, encodePayload(row), err)
			continue
		}
		summary.Processed++
	}

	return summary, nil
}

// resumePoint returns the external id to pull from. An empty local history
// means nothing has ever been imported, so the initial full import starts
// at zero. A non-empty history that cannot be correlated against the source
// aborts the run: resuming from zero there would silently reimport
// everything.
func (p *ReplenishmentProcessor) resumePoint(ctx context.Context) (int64, error) {
	recent, err := p.batches.RecentKeys(ctx, syncdomain.ResumeWindowSize)
	if err != nil {
		return 0, err
	}
	if len(recent) == 0 {
		return 0, nil
	}

	keys := make([]syncdomain.InvoiceKey, 0, len(recent))
	for _, key := range recent {
		keys = append(keys, syncdomain.InvoiceKey{Number: key.InvoiceNumber, Date: key.InvoiceDate})
	}

	watermark, ok, err := syncdomain.FindResumePoint(ctx, keys, p.gateway)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: none of the %d most recent invoices matched the source, full catch-up required", syncdomain.ErrNoResumePoint, len(keys))
	}
	return watermark, nil
}

func (p *ReplenishmentProcessor) importRow(ctx context.Context, row syncdomain.ReplenishmentRow) error {
	if row.InvoiceNumber == "" || row.InvoiceDate.IsZero() {
		return fmt.Errorf("%w: replenishment %d without invoice key", syncdomain.ErrValidation, row.ExternalID)
	}
	if row.SupplierName == "" {
		return fmt.Errorf("%w: replenishment %d without supplier", syncdomain.ErrValidation, row.ExternalID)
	}

	warehouse, err := p.warehouses.FindByExternalID(ctx, row.WarehouseExternalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: replenishment %d references unknown warehouse %d", syncdomain.ErrValidation, row.ExternalID, row.WarehouseExternalID)
		}
		return err
	}

	supplierID, err := p.entities.ResolveSupplier(ctx, row.SupplierName)
	if err != nil {
		return err
	}

	batch, err := stock.NewReplenishmentBatch(row.ExternalID, row.InvoiceNumber, row.InvoiceDate, supplierID, warehouse.ID)
	if err != nil {
		return err
	}

	if row.CurrencyCode != "" {
		currencyID, err := p.entities.ResolveCurrency(ctx, row.CurrencyCode)
		if err != nil {
			return err
		}
		batch.SetCurrency(currencyID)
	}

	for _, item := range row.Items {
		productID, err := p.entities.ResolveProduct(ctx, item.Product)
		if err != nil {
			return err
		}
		if err := batch.AddItem(productID, item.Quantity, item.UnitPrice); err != nil {
			return err
		}
		if _, err := p.ledger.Adjust(ctx, productID, warehouse.ID, stock.QuantityOnhand, item.Quantity); err != nil {
			return err
		}
	}

	return p.batches.Save(ctx, batch)
}
