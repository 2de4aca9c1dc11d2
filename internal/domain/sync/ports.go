package sync

import (
	"context"
	"time"
)

// LegacyGateway is the port to the legacy shop database. All pulls are
// incremental: rows strictly newer than the given point, ascending, with no
// page limit (expected batch volume is low).
type LegacyGateway interface {
	InvoiceLookup

	// FetchReplenishmentsSince returns replenishment rows with external id
	// strictly greater than sinceExternalID, in ascending id order.
	FetchReplenishmentsSince(ctx context.Context, sinceExternalID int64) ([]ReplenishmentRow, error)

	// FetchTransfersSince returns transfer rows with external id strictly
	// greater than sinceExternalID, in ascending id order.
	FetchTransfersSince(ctx context.Context, sinceExternalID int64) ([]TransferRow, error)

	// FetchStockTakingsSince returns stock taking rows taken strictly after
	// the given time, in ascending time order.
	FetchStockTakingsSince(ctx context.Context, since time.Time) ([]StockTakingRow, error)
}

// OrderPullRequest asks a storefront for a page of orders in a time window
type OrderPullRequest struct {
	StartTime time.Time
	EndTime   time.Time
	PageNo    int
	PageSize  int
}

// OrderPullResponse is one page of pulled orders
type OrderPullResponse struct {
	Orders     []OrderRow
	HasMore    bool
	NextPageNo int
}

// StorefrontPlatform is the port to one REST storefront
type StorefrontPlatform interface {
	// Code identifies the storefront (doubles as its sales channel name)
	Code() string

	// SalesChannelID is the local channel id customers from this
	// storefront are grouped under
	SalesChannelID() int64

	// PullOrders returns one page of orders placed inside the window
	PullOrders(ctx context.Context, req *OrderPullRequest) (*OrderPullResponse, error)
}

// RunLease is an advisory lock keyed by sync type. Nothing in the watermark
// algorithm prevents two concurrent runs of the same type from resolving the
// same resume point, so every run must hold the lease for its type.
type RunLease interface {
	// Acquire takes the lease for a sync type. Returns false when another
	// run already holds it.
	Acquire(ctx context.Context, syncType Type, ttl time.Duration) (bool, error)

	// Release frees the lease for a sync type
	Release(ctx context.Context, syncType Type) error
}
