package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stocksync/engine/internal/application/policy"
	"github.com/stocksync/engine/internal/domain/shared"
	"github.com/stocksync/engine/internal/interfaces/http/dto"
)

// PolicyHandler exposes replenishment policy resolution for inspection
type PolicyHandler struct {
	policies *policy.Service
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policies *policy.Service) *PolicyHandler {
	return &PolicyHandler{policies: policies}
}

// Resolve returns the effective calculation policy for a (product, warehouse)
// pair, including which level of the hierarchy supplied it.
func (h *PolicyHandler) Resolve(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("INVALID_PRODUCT_ID", "Product ID must be a UUID"))
		return
	}
	warehouseID, err := uuid.Parse(c.Param("warehouse_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("INVALID_WAREHOUSE_ID", "Warehouse ID must be a UUID"))
		return
	}

	decision, err := h.policies.ResolveFor(c.Request.Context(), productID, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("POLICY_RESOLUTION_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"kind":             decision.Kind,
		"calculation_type": decision.CalculationType,
		"analyzed_period":  decision.AnalyzedPeriod,
		"source":           decision.Source,
	}))
}
