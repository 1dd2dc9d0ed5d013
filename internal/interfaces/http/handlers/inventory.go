// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fashion-store/internal/domain/inventory"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
)

const defaultLowStockThreshold = 5

// InventoryHandler handles admin stock endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// AdjustStock handles POST /admin/variants/:id/stock
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	variantID, ok := parseIDParam(c, "id", "variant")
	if !ok {
		return
	}

	var req inventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	movement, err := h.inventoryService.Adjust(c.Request.Context(), principal.UserID, variantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock adjusted successfully",
		"data":    movement,
	})
}

// GetMovements handles GET /admin/variants/:id/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	variantID, ok := parseIDParam(c, "id", "variant")
	if !ok {
		return
	}

	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.inventoryService.Movements(c.Request.Context(), variantID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock movements retrieved successfully",
		"data":    response,
	})
}

// GetLowStock handles GET /admin/inventory/low-stock?threshold=N
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	threshold := defaultLowStockThreshold
	if raw := c.Query("threshold"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || t < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid threshold",
			})
			return
		}
		threshold = t
	}

	variants, err := h.inventoryService.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock variants retrieved successfully",
		"data":    variants,
	})
}
