package legacy

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/infrastructure/config"
)

// RetryableConnection wraps the read-only connection to the legacy
// database. The legacy server drops idle connections without warning, so
// every query retries transient failures with exponential backoff before
// giving up. database/sql reconnects under the hood; the retry here just
// re-runs the statement on a fresh connection.
type RetryableConnection struct {
	db          *sql.DB
	maxRetries  int
	backoffBase time.Duration
	backoffMax  time.Duration
	logger      *zap.Logger
}

// Open opens the legacy database connection and verifies it is reachable
func Open(cfg *config.LegacyDBConfig, logger *zap.Logger) (*RetryableConnection, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: open legacy database: %v", syncdomain.ErrSourceUnavailable, err)
	}

	// The legacy side is shared with other consumers, keep our footprint small
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(time.Minute)

	conn := &RetryableConnection{
		db:          db,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		logger:      logger.Named("legacy"),
	}

	if err := conn.Ping(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return conn, nil
}

// NewRetryableConnection wraps an existing sql.DB, used by tests
func NewRetryableConnection(db *sql.DB, cfg *config.LegacyDBConfig, logger *zap.Logger) *RetryableConnection {
	return &RetryableConnection{
		db:          db,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		logger:      logger.Named("legacy"),
	}
}

// Ping checks the legacy database is reachable, with retries
func (c *RetryableConnection) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", func() error {
		return c.db.PingContext(ctx)
	})
}

// QueryContext runs a query with retries on transient failures. Failures
// while iterating the returned rows are not retried.
func (c *RetryableConnection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := c.do(ctx, "query", func() error {
		var qerr error
		rows, qerr = c.db.QueryContext(ctx, query, args...)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryRowScan runs a single-row query with retries and scans the result.
// sql.ErrNoRows passes through untouched so callers can branch on it.
func (c *RetryableConnection) QueryRowScan(ctx context.Context, query string, args []any, dest ...any) error {
	return c.do(ctx, "query row", func() error {
		return c.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	})
}

// Close closes the underlying connection pool
func (c *RetryableConnection) Close() error {
	return c.db.Close()
}

// do runs fn up to maxRetries times, backing off between attempts
func (c *RetryableConnection) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}

		c.logger.Warn("legacy database operation failed",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.maxRetries),
			zap.Error(lastErr))

		if attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %v",
		syncdomain.ErrConnection, op, c.maxRetries, lastErr)
}

// backoff returns the wait before the next attempt, doubling per attempt
// and capped at backoffMax
func (c *RetryableConnection) backoff(attempt int) time.Duration {
	d := c.backoffBase << (attempt - 1)
	if d > c.backoffMax || d <= 0 {
		return c.backoffMax
	}
	return d
}

func (c *RetryableConnection) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isTransient classifies failures worth retrying: dropped connections,
// resets, and server-side connection exceptions. Anything else (syntax
// errors, missing tables, no rows) fails immediately.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08: connection exception, class 57: operator intervention
		// (shutdown, crash). Both mean the session is gone, not the query.
		class := pqErr.Code.Class()
		return class == "08" || class == "57"
	}
	return false
}
