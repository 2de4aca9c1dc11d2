package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stocksync/engine/internal/application/resolver"
	"github.com/stocksync/engine/internal/domain/partner"
	"github.com/stocksync/engine/internal/domain/stock"
	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// orderPageSize is a reasonable page size for most storefront APIs
const orderPageSize = 50

// OrderProcessor pulls orders from the registered REST storefronts,
// resolves each order's customer account family and address, and reserves
// stock for the ordered quantities. The (sales channel, external order id)
// pair is the idempotency guard.
type OrderProcessor struct {
	runner
	platforms  []syncdomain.StorefrontPlatform
	entities   *resolver.EntityResolver
	ledger     *stock.Ledger
	imports    syncdomain.OrderImportRepository
	warehouses partner.WarehouseRepository
	// Lookback bounds the initial pull window for a channel with no
	// imported orders yet.
	Lookback time.Duration
}

// NewOrderProcessor creates a new order processor
func NewOrderProcessor(
	platforms []syncdomain.StorefrontPlatform,
	entities *resolver.EntityResolver,
	ledger *stock.Ledger,
	imports syncdomain.OrderImportRepository,
	warehouses partner.WarehouseRepository,
	lease syncdomain.RunLease,
	runs syncdomain.RunRepository,
	failures syncdomain.FailureLogRepository,
	logger *zap.Logger,
) *OrderProcessor {
	return &OrderProcessor{
		runner:     newRunner(lease, runs, failures, logger),
		platforms:  platforms,
		entities:   entities,
		ledger:     ledger,
		imports:    imports,
		warehouses: warehouses,
		Lookback:   30 * 24 * time.Hour,
	}
}

// Run executes one order reconciliation run across all storefronts
func (p *OrderProcessor) Run(ctx context.Context) (syncdomain.Summary, error) {
	return p.execute(ctx, syncdomain.TypeOrder, p.reconcile)
}

func (p *OrderProcessor) reconcile(ctx context.Context) (syncdomain.Summary, error) {
	var summary syncdomain.Summary

	defaultWarehouse, err := p.defaultWarehouse(ctx)
	if err != nil {
		return summary, err
	}

	for _, platform := range p.platforms {
		platformSummary, err := p.pullPlatform(ctx, platform, defaultWarehouse)
		summary.Processed += platformSummary.Processed
		summary.Skipped += platformSummary.Skipped
		summary.Failed += platformSummary.Failed
		if err != nil {
			return summary, fmt.Errorf("storefront %s: %w", platform.Code(), err)
		}
	}

	return summary, nil
}

func (p *OrderProcessor) pullPlatform(ctx context.Context, platform syncdomain.StorefrontPlatform, warehouse *partner.Warehouse) (syncdomain.Summary, error) {
	var summary syncdomain.Summary

	start, err := p.imports.LatestPlacedAt(ctx, platform.SalesChannelID())
	if err != nil {
		return summary, err
	}
	if start.IsZero() {
		start = time.Now().Add(-p.Lookback)
	}

	pageNo := 1
	for {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		resp, err := platform.PullOrders(ctx, &syncdomain.OrderPullRequest{
			StartTime: start,
			EndTime:   time.Now(),
			PageNo:    pageNo,
			PageSize:  orderPageSize,
		})
		if err != nil {
			return summary, err
		}

		for i := range resp.Orders {
			order := &resp.Orders[i]

			if order.Status == syncdomain.OrderStatusCancelled {
				summary.Skipped++
				continue
			}

			exists, err := p.imports.Exists(ctx, order.SalesChannelID, order.ExternalID)
			if err != nil {
				return summary, err
			}
			if exists {
				summary.Skipped++
				continue
			}

			if err := p.importOrder(ctx, order, warehouse); err != nil {
				summary.Failed++
				ref := fmt.Sprintf("order:%d:%s", order.SalesChannelID, order.ExternalID)
				p.recordFailure(ctx, syncdomain.TypeOrder, ref, encodePayload(order), err)
				continue
			}
			summary.Processed++
		}

		if !resp.HasMore || len(resp.Orders) == 0 {
			break
		}
		pageNo = resp.NextPageNo
	}

	return summary, nil
}

func (p *OrderProcessor) importOrder(ctx context.Context, order *syncdomain.OrderRow, warehouse *partner.Warehouse) error {
	if order.Email == "" {
		return fmt.Errorf("%w: order %s without customer email", syncdomain.ErrValidation, order.ExternalID)
	}

	customerID, err := p.entities.ResolveCustomer(ctx, order.Email, order.SalesChannelID, order.CustomerName)
	if err != nil {
		return err
	}

	if order.CountryCode != "" && order.City != "" && order.Street != "" {
		if _, err := p.entities.ResolveAddress(ctx, customerID, order.CountryCode, order.City, order.Street, order.PostalCode); err != nil {
			return err
		}
	}

	// Open and paid orders commit stock that is not yet shipped; shipped
	// orders are already reflected in onhand by the legacy-side movements.
	if order.Status == syncdomain.OrderStatusOpen || order.Status == syncdomain.OrderStatusPaid {
		for _, item := range order.Items {
			productID, err := p.entities.ResolveProduct(ctx, item.Product)
			if err != nil {
				return err
			}
			if _, err := p.ledger.Adjust(ctx, productID, warehouse.ID, stock.QuantityReserved, item.Quantity); err != nil {
				return err
			}
		}
	}

	record, err := syncdomain.NewOrderImport(order.SalesChannelID, order.ExternalID, customerID, order.PlacedAt)
	if err != nil {
		return err
	}
	return p.imports.Save(ctx, record)
}

// defaultWarehouse returns the warehouse storefront reservations are booked
// against: the root of the hierarchy, or the first warehouse when the
// forest has several roots.
func (p *OrderProcessor) defaultWarehouse(ctx context.Context) (*partner.Warehouse, error) {
	warehouses, err := p.warehouses.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(warehouses) == 0 {
		return nil, fmt.Errorf("%w: no warehouses configured", syncdomain.ErrValidation)
	}

	for i := range warehouses {
		if warehouses[i].IsRoot() {
			return &warehouses[i], nil
		}
	}
	return &warehouses[0], nil
}
