package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
	"github.com/stocksync/engine/internal/interfaces/http/dto"
)

// defaultListLimit caps run and failure listings
const defaultListLimit = 50

// ProcessorFunc runs one reconciliation processor and returns its summary
type ProcessorFunc func(ctx context.Context) (syncdomain.Summary, error)

// SyncHandler exposes manual triggers and run history over HTTP
type SyncHandler struct {
	processors map[syncdomain.Type]ProcessorFunc
	runs       syncdomain.RunRepository
	failures   syncdomain.FailureLogRepository
	logger     *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(
	processors map[syncdomain.Type]ProcessorFunc,
	runs syncdomain.RunRepository,
	failures syncdomain.FailureLogRepository,
	logger *zap.Logger,
) *SyncHandler {
	return &SyncHandler{
		processors: processors,
		runs:       runs,
		failures:   failures,
		logger:     logger,
	}
}

// TriggerRun starts a reconciliation run for the sync type in the path.
// The run executes inline; callers get the summary when it finishes.
func (h *SyncHandler) TriggerRun(c *gin.Context) {
	syncType := syncdomain.Type(c.Param("type"))
	fn, ok := h.processors[syncType]
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("UNKNOWN_SYNC_TYPE",
			"No such sync type: "+c.Param("type")))
		return
	}

	summary, err := fn(c.Request.Context())
	switch {
	case errors.Is(err, syncdomain.ErrRunInProgress):
		c.JSON(http.StatusConflict, dto.NewErrorResponse("RUN_IN_PROGRESS",
			"A "+syncType.String()+" run is already in progress"))
	case err != nil:
		h.logger.Error("Manual sync run failed",
			zap.String("sync_type", syncType.String()),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse("RUN_FAILED", err.Error()))
	default:
		c.JSON(http.StatusOK, dto.NewSuccessResponse(summary))
	}
}

// ListRuns returns the most recent runs, newest first
func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))
	runs, err := h.runs.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("INTERNAL_ERROR", err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(runs))
}

// ListFailures returns recent per-row failures for a sync type
func (h *SyncHandler) ListFailures(c *gin.Context) {
	syncType := syncdomain.Type(c.Param("type"))
	if !syncType.IsValid() {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("UNKNOWN_SYNC_TYPE",
			"No such sync type: "+c.Param("type")))
		return
	}

	limit := parseLimit(c.Query("limit"))
	entries, err := h.failures.RecentByType(c.Request.Context(), syncType, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("INTERNAL_ERROR", err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(entries))
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
