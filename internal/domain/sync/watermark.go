package sync

import (
	"context"
	"time"
)

// ResumeWindowSize caps how many recently imported batches are correlated
// against the external source when searching for a resume point.
const ResumeWindowSize = 100

// InvoiceKey is the natural key of a replenishment on both sides of the
// boundary: the invoice number together with its date.
type InvoiceKey struct {
	Number string
	Date   time.Time
}

// InvoiceLookup resolves an invoice natural key to its external id.
type InvoiceLookup interface {
	// FindReplenishmentByInvoice returns the external id of the
	// replenishment carrying the given invoice key, or ok=false when the
	// source has no such row.
	FindReplenishmentByInvoice(ctx context.Context, key InvoiceKey) (int64, bool, error)
}

// FindResumePoint determines the highest external id already imported
// locally. recentKeys must be ordered newest first; the first key the
// external source still knows wins, and its external id is the watermark.
//
// When none of the keys in the window match, ok is false: the sync cannot
// resume safely and the caller must report "full catch-up required" instead
// of silently importing from zero.
func FindResumePoint(ctx context.Context, recentKeys []InvoiceKey, lookup InvoiceLookup) (int64, bool, error) {
	if len(recentKeys) > ResumeWindowSize {
		recentKeys = recentKeys[:ResumeWindowSize]
	}

	for _, key := range recentKeys {
		select {
		case <-ctx.Done():
			return 0, false, ctx.Err()
		default:
		}

		externalID, ok, err := lookup.FindReplenishmentByInvoice(ctx, key)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return externalID, true, nil
		}
	}

	return 0, false, nil
}
