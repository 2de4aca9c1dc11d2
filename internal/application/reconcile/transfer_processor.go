package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksync/engine/internal/application/resolver"
	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/shared"
	"github.com/stocksync/engine/internal/domain/stock"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// TransferProcessor imports inter-warehouse movements from the legacy
// database. The external transfer id is both the watermark (resume from the
// highest imported id) and the idempotency guard.
//
// A transfer decrements the sending warehouse and increments the receiving
// warehouse as one logical step. When the increment fails after the
// decrement succeeded, the transfer is left half-applied, reported as a
// consistency failure, and never retried automatically: retrying could
// silently duplicate the decrement, and manual reconciliation is the
// conservative choice.
type TransferProcessor struct {
	runner
	gateway    syncdomain.LegacyGateway
	entities   *resolver.EntityResolver
	ledger     *stock.Ledger
	batches    stock.TransferRepository
	warehouses partner.WarehouseRepository
}

// NewTransferProcessor creates a new transfer processor
func NewTransferProcessor(
	gateway syncdomain.LegacyGateway,
	entities *resolver.EntityResolver,
	ledger *stock.Ledger,
	batches stock.TransferRepository,
	warehouses partner.WarehouseRepository,
	lease syncdomain.RunLease,
	runs syncdomain.RunRepository,
	failures syncdomain.FailureLogRepository,
	logger *zap.Logger,
) *TransferProcessor {
	return &TransferProcessor{
		runner:     newRunner(lease, runs, failures, logger),
		gateway:    gateway,
		entities:   entities,
		ledger:     ledger,
		batches:    batches,
		warehouses: warehouses,
	}
}

// Run executes one transfer reconciliation run
func (p *TransferProcessor) Run(ctx context.Context) (syncdomain.Summary, error) {
	return p.execute(ctx, syncdomain.TypeTransfer, p.reconcile)
}

func (p *TransferProcessor) reconcile(ctx context.Context) (syncdomain.Summary, error) {
	var summary syncdomain.Summary

	since, err := p.batches.MaxExternalID(ctx)
	if err != nil {
		return summary, err
	}

	rows, err := p.gateway.FetchTransfersSince(ctx, since)
	if err != nil {
		return summary, fmt.Errorf("fetch transfers since %d: %w", since, err)
	}

	for _, row := range rows {
		exists, err := p.batches.ExistsByExternalID(ctx, row.ExternalID)
		if err != nil {
			return summary, err
		}
		if exists {
			summary.Skipped++
			continue
		}

		if err := p.importRow(ctx, row); err != nil {
			summary.Failed++
			ref := fmt.Sprintf("transfer:%d", row.ExternalID)
			p.recordFailure(ctx, syncdomain.TypeTransfer, ref, encodePayload(row), err)
			continue
		}
		summary.Processed++
	}

	return summary, nil
}

func (p *TransferProcessor) importRow(ctx context.Context, row syncdomain.TransferRow) error {
	from, err := p.warehouseByExternalID(ctx, row.ExternalID, row.FromWarehouseExternalID)
	if err != nil {
		return err
	}
	to, err := p.warehouseByExternalID(ctx, row.ExternalID, row.ToWarehouseExternalID)
	if err != nil {
		return err
	}

	batch, err := stock.NewTransferBatch(row.ExternalID, from.ID, to.ID, row.TransferredAt)
	if err != nil {
		return err
	}

	for _, item := range row.Items {
		productID, err := p.entities.ResolveProduct(ctx, item.Product)
		if err != nil {
			return err
		}
		if err := batch.AddItem(productID, item.Quantity); err != nil {
			return err
		}
		if err := p.moveStock(ctx, productID, from.ID, to.ID, item.Quantity); err != nil {
			return err
		}
	}

	return p.batches.Save(ctx, batch)
}

// moveStock applies the two sides of one movement line. The increment
// failing after the decrement succeeded is surfaced as ErrConsistency and
// deliberately not compensated.
func (p *TransferProcessor) moveStock(ctx context.Context, productID, fromWarehouseID, toWarehouseID uuid.UUID, quantity int64) error {
	if _, err := p.ledger.Adjust(ctx, productID, fromWarehouseID, stock.QuantityOnhand, -quantity); err != nil {
		return err
	}

	if _, err := p.ledger.Adjust(ctx, productID, toWarehouseID, stock.QuantityOnhand, quantity); err != nil {
		return fmt.Errorf("%w: decremented %d units of product %s at warehouse %s but failed to increment at %s: %v",
			syncdomain.ErrConsistency, quantity, productID, fromWarehouseID, toWarehouseID, err)
	}

	return nil
}

func (p *TransferProcessor) warehouseByExternalID(ctx context.Context, transferID, externalWarehouseID int64) (*partner.Warehouse, error) {
	warehouse, err := p.warehouses.FindByExternalID(ctx, externalWarehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: transfer %d references unknown warehouse %d", syncdomain.ErrValidation, transferID, externalWarehouseID)
		}
		return nil, err
	}
	return warehouse, nil
}
