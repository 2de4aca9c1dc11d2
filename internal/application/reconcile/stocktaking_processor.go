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

// StockTakingProcessor imports physical counts from the legacy database.
// The resume point is the latest imported taking timestamp; the
// (external warehouse, timestamp) pair is the idempotency guard. Each
// counted line overwrites onhand stock, because the physical count is
// authoritative.
type StockTakingProcessor struct {
	runner
	gateway    syncdomain.LegacyGateway
	entities   *resolver.EntityResolver
	ledger     *stock.Ledger
	batches    stock.StockTakingRepository
	warehouses partner.WarehouseRepository
}

// NewStockTakingProcessor creates a new stock taking processor
func NewStockTakingProcessor(
	gateway syncdomain.LegacyGateway,
	entities *resolver.EntityResolver,
	ledger *stock.Ledger,
	batches stock.StockTakingRepository,
	warehouses partner.WarehouseRepository,
	lease syncdomain.RunLease,
	runs syncdomain.RunRepository,
	failures syncdomain.FailureLogRepository,
	logger *zap.Logger,
) *StockTakingProcessor {
	return &StockTakingProcessor{
		runner:     newRunner(lease, runs, failures, logger),
		gateway:    gateway,
		entities:   entities,
		ledger:     ledger,
		batches:    batches,
		warehouses: warehouses,
	}
}

// Run executes one stock taking reconciliation run
func (p *StockTakingProcessor) Run(ctx context.Context) (syncdomain.Summary, error) {
	return p.execute(ctx, syncdomain.TypeStockTaking, p.reconcile)
}

func (p *StockTakingProcessor) reconcile(ctx context.Context) (syncdomain.Summary, error) {
	var summary syncdomain.Summary

	since, err := p.batches.LatestTakenAt(ctx)
	if err != nil {
		return summary, err
	}

	rows, err := p.gateway.FetchStockTakingsSince(ctx, since)
	if err != nil {
		return summary, fmt.Errorf("fetch stock takings since %s: %w", since, err)
	}

	for _, row := range rows {
		exists, err := p.batches.ExistsByNaturalKey(ctx, row.WarehouseExternalID, row.TakenAt)
		if err != nil {
			return summary, err
		}
		if exists {
			summary.Skipped++
			continue
		}

		if err := p.importRow(ctx, row); err != nil {
			summary.Failed++
			ref := fmt.Sprintf("taking:%d@%s", row.WarehouseExternalID, row.TakenAt.Format("2006-01-02T15:04:05Z07:00"))
			p.recordFailure(ctx, syncdomain.TypeStockTaking, ref, encodePayload(row), err)
			continue
		}
		summary.Processed++
	}

	return summary, nil
}

func (p *StockTakingProcessor) importRow(ctx context.Context, row syncdomain.StockTakingRow) error {
	warehouse, err := p.warehouses.FindByExternalID(ctx, row.WarehouseExternalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: stock taking references unknown warehouse %d", syncdomain.ErrValidation, row.WarehouseExternalID)
		}
		return err
	}

	batch, err := stock.NewStockTakingBatch(row.WarehouseExternalID, warehouse.ID, row.TakenAt)
	if err != nil {
		return err
	}

	for _, item := range row.Items {
		productID, err := p.entities.ResolveProduct(ctx, item.Product)
		if err != nil {
			return err
		}
		if err := batch.AddItem(productID, item.ObservedOnhand); err != nil {
			return err
		}
		if _, err := p.ledger.SetFromCount(ctx, productID, warehouse.ID, item.ObservedOnhand); err != nil {
			return err
		}
	}

	return p.batches.Save(ctx, batch)
}
