// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fashion-store/internal/domain/cart"
)

// CartHandler handles cart endpoints. The cart lives in the browsing session,
// so anonymous visitors can fill one before signing in.
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    h.cartService.GetCart(sess),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cartResponse, err := h.cartService.AddToCart(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// UpdateCartItem handles PUT /cart/items/:variant_id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	variantID, ok := parseIDParam(c, "variant_id", "variant")
	if !ok {
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cartResponse, err := h.cartService.UpdateCartItem(c.Request.Context(), sess, variantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// RemoveFromCart handles DELETE /cart/items/:variant_id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	variantID, ok := parseIDParam(c, "variant_id", "variant")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    h.cartService.RemoveFromCart(sess, variantID),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	h.cartService.ClearCart(sess)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// BuyNow handles POST /cart/buy-now. It replaces any pending buy-now item and
// leaves the regular cart untouched.
func (h *CartHandler) BuyNow(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cartResponse, err := h.cartService.BuyNow(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Buy-now item ready for checkout",
		"data":    cartResponse,
	})
}
