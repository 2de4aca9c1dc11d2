package cache

import (
	"context"
	"sync"
	"time"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// InMemoryRunLease implements RunLease for single-instance deployments
// and tests. Leases expire lazily on the next Acquire.
type InMemoryRunLease struct {
	mu     sync.Mutex
	leases map[syncdomain.Type]time.Time
	now    func() time.Time
}

// NewInMemoryRunLease creates an in-memory lease store
func NewInMemoryRunLease() *InMemoryRunLease {
	return &InMemoryRunLease{
		leases: make(map[syncdomain.Type]time.Time),
		now:    time.Now,
	}
}

// Acquire takes the lease for a sync type unless an unexpired holder exists
func (l *InMemoryRunLease) Acquire(ctx context.Context, syncType syncdomain.Type, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.leases[syncType]; held && l.now().Before(expiry) {
		return false, nil
	}
	l.leases[syncType] = l.now().Add(ttl)
	return true, nil
}

// Release frees the lease for a sync type
func (l *InMemoryRunLease) Release(ctx context.Context, syncType syncdomain.Type) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, syncType)
	return nil
}

// Ensure InMemoryRunLease implements RunLease
var _ syncdomain.RunLease = (*InMemoryRunLease)(nil)
