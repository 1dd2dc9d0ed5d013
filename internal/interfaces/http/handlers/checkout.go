// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fashion-store/internal/domain/cart"
	"github.com/your-org/fashion-store/internal/domain/order"
	"github.com/your-org/fashion-store/internal/domain/user"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	orderService *order.Service
	cartService  *cart.Service
	userService  *user.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(orderService *order.Service, cartService *cart.Service, userService *user.Service) *CheckoutHandler {
	return &CheckoutHandler{
		orderService: orderService,
		cartService:  cartService,
		userService:  userService,
	}
}

// GetCheckout handles GET /checkout. It returns what would be ordered plus the
// profile's contact details for prefilling the form. Pass buy_now=true to
// review the buy-now item instead of the cart.
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	summary := h.cartService.GetCart(sess)
	if c.Query("buy_now") == "true" {
		summary = h.cartService.GetBuyNow(sess)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data": gin.H{
			"cart":             summary,
			"shipping_address": profile.Address,
			"phone":            profile.Phone,
		},
	})
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req order.CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.PlaceOrder(c.Request.Context(), principal, sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    o,
	})
}
