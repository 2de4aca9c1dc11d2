package legacy

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/infrastructure/config"
)

func newTestConnection(t *testing.T, maxRetries int) (*RetryableConnection, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	cfg := &config.LegacyDBConfig{
		MaxRetries:  maxRetries,
		BackoffBase: time.Millisecond,
		BackoffMax:  4 * time.Millisecond,
	}
	return NewRetryableConnection(mockDB, cfg, zap.NewNop()), mock
}

func TestRetryableConnection_Ping(t *testing.T) {
	t.Run("recovers after transient failure", func(t *testing.T) {
		conn, mock := newTestConnection(t, 3)

		mock.ExpectPing().WillReturnError(syscall.ECONNRESET)
		mock.ExpectPing()

		require.NoError(t, conn.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		conn, mock := newTestConnection(t, 3)

		for i := 0; i < 3; i++ {
			mock.ExpectPing().WillReturnError(syscall.ECONNRESET)
		}

		err := conn.Ping(context.Background())
		assert.ErrorIs(t, err, syncdomain.ErrConnection)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRetryableConnection_QueryContext(t *testing.T) {
	t.Run("does not retry non-transient errors", func(t *testing.T) {
		conn, mock := newTestConnection(t, 3)

		mock.ExpectQuery("SELECT id FROM supplier_deliveries").
			WillReturnError(assert.AnError)

		_, err := conn.QueryContext(context.Background(), "SELECT id FROM supplier_deliveries WHERE id > $1", 0)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, syncdomain.ErrConnection)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retries reset connections until success", func(t *testing.T) {
		conn, mock := newTestConnection(t, 3)

		mock.ExpectQuery("SELECT id").WillReturnError(syscall.EPIPE)
		mock.ExpectQuery("SELECT id").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

		rows, err := conn.QueryContext(context.Background(), "SELECT id FROM warehouse_moves")
		require.NoError(t, err)
		defer rows.Close()

		require.True(t, rows.Next())
		var id int64
		require.NoError(t, rows.Scan(&id))
		assert.Equal(t, int64(5), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops waiting when context is cancelled", func(t *testing.T) {
		conn, mock := newTestConnection(t, 3)
		conn.backoffBase = time.Minute
		conn.backoffMax = time.Minute

		mock.ExpectQuery("SELECT id").WillReturnError(syscall.ECONNRESET)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := conn.QueryContext(ctx, "SELECT id FROM warehouse_moves")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBackoff(t *testing.T) {
	cfg := &config.LegacyDBConfig{MaxRetries: 5, BackoffBase: time.Second, BackoffMax: 5 * time.Second}
	conn := NewRetryableConnection(nil, cfg, zap.NewNop())

	assert.Equal(t, time.Second, conn.backoff(1))
	assert.Equal(t, 2*time.Second, conn.backoff(2))
	assert.Equal(t, 4*time.Second, conn.backoff(3))
	assert.Equal(t, 5*time.Second, conn.backoff(4))
	assert.Equal(t, 5*time.Second, conn.backoff(10))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(syscall.ECONNRESET))
	assert.True(t, isTransient(syscall.ECONNREFUSED))
	assert.True(t, isTransient(syscall.EPIPE))
	assert.False(t, isTransient(assert.AnError))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(nil))
}
