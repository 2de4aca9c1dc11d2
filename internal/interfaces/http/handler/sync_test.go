package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

type fakeRunRepo struct {
	runs []syncdomain.Run
}

func (r *fakeRunRepo) Save(ctx context.Context, run *syncdomain.Run) error {
	r.runs = append(r.runs, *run)
	return nil
}

func (r *fakeRunRepo) Recent(ctx context.Context, limit int) ([]syncdomain.Run, error) {
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	return r.runs[:limit], nil
}

type fakeFailureRepo struct {
	entries []syncdomain.FailureLog
}

func (r *fakeFailureRepo) Save(ctx context.Context, entry *syncdomain.FailureLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeFailureRepo) RecentByType(ctx context.Context, syncType syncdomain.Type, limit int) ([]syncdomain.FailureLog, error) {
	return r.entries, nil
}

func newTestRouter(h *SyncHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/api/v1/sync/:type/run", h.TriggerRun)
	engine.GET("/api/v1/sync/runs", h.ListRuns)
	engine.GET("/api/v1/sync/:type/failures", h.ListFailures)
	return engine
}

func TestSyncHandler_TriggerRun(t *testing.T) {
	t.Run("returns the summary of a successful run", func(t *testing.T) {
		h := NewSyncHandler(map[syncdomain.Type]ProcessorFunc{
			syncdomain.TypeTransfer: func(ctx context.Context) (syncdomain.Summary, error) {
				return syncdomain.Summary{Processed: 4, Skipped: 1}, nil
			},
		}, &fakeRunRepo{}, &fakeFailureRepo{}, zap.NewNop())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/transfer/run", nil)
		newTestRouter(h).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Success bool               `json:"success"`
			Data    syncdomain.Summary `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, 4, body.Data.Processed)
		assert.Equal(t, 1, body.Data.Skipped)
	})

	t.Run("unknown type is 404", func(t *testing.T) {
		h := NewSyncHandler(nil, &fakeRunRepo{}, &fakeFailureRepo{}, zap.NewNop())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/nonsense/run", nil)
		newTestRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("held lease is 409", func(t *testing.T) {
		h := NewSyncHandler(map[syncdomain.Type]ProcessorFunc{
			syncdomain.TypeOrder: func(ctx context.Context) (syncdomain.Summary, error) {
				return syncdomain.Summary{}, syncdomain.ErrRunInProgress
			},
		}, &fakeRunRepo{}, &fakeFailureRepo{}, zap.NewNop())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/order/run", nil)
		newTestRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("source failure is 502", func(t *testing.T) {
		h := NewSyncHandler(map[syncdomain.Type]ProcessorFunc{
			syncdomain.TypeReplenishment: func(ctx context.Context) (syncdomain.Summary, error) {
				return syncdomain.Summary{}, syncdomain.ErrConnection
			},
		}, &fakeRunRepo{}, &fakeFailureRepo{}, zap.NewNop())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/replenishment/run", nil)
		newTestRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestSyncHandler_ListRuns(t *testing.T) {
	repo := &fakeRunRepo{}
	run, err := syncdomain.NewRun(syncdomain.TypeTransfer)
	require.NoError(t, err)
	run.Complete(3, 0, 0)
	require.NoError(t, repo.Save(context.Background(), run))

	h := NewSyncHandler(nil, repo, &fakeFailureRepo{}, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs?limit=10", nil)
	newTestRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SUCCEEDED")
}

func TestSyncHandler_ListFailures(t *testing.T) {
	repo := &fakeFailureRepo{}
	require.NoError(t, repo.Save(context.Background(),
		syncdomain.NewFailureLog(syncdomain.TypeTransfer, "42", "{}", "unknown warehouse")))

	h := NewSyncHandler(nil, &fakeRunRepo{}, repo, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/transfer/failures", nil)
	newTestRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unknown warehouse")
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, parseLimit(""))
	assert.Equal(t, 10, parseLimit("10"))
	assert.Equal(t, defaultListLimit, parseLimit("-3"))
	assert.Equal(t, defaultListLimit, parseLimit("9999"))
	assert.Equal(t, defaultListLimit, parseLimit("abc"))
}
