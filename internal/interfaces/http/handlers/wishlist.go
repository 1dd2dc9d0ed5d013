// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fashion-store/internal/domain/wishlist"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	principal, ok := requirePrincipal(c)
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

	response, err := h.wishlistService.List(c.Request.Context(), principal.UserID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data":    response,
	})
}

// ToggleWishlist handles POST /wishlist/:product_id/toggle
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id", "product")
	if !ok {
		return
	}

	response, err := h.wishlistService.Toggle(c.Request.Context(), principal.UserID, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Product removed from wishlist"
	if response.InWishlist {
		message = "Product added to wishlist"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    response,
	})
}

// CheckItemInWishlist handles GET /wishlist/:product_id
func (h *WishlistHandler) CheckItemInWishlist(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id", "product")
	if !ok {
		return
	}

	inWishlist, err := h.wishlistService.IsInWishlist(c.Request.Context(), principal.UserID, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist status retrieved successfully",
		"data": gin.H{
			"product_id":  productID,
			"in_wishlist": inWishlist,
		},
	})
}

// RemoveFromWishlist handles DELETE /wishlist/:product_id
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id", "product")
	if !ok {
		return
	}

	if err := h.wishlistService.Remove(c.Request.Context(), principal.UserID, productID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from wishlist",
	})
}

// MoveToCart handles POST /wishlist/:product_id/move-to-cart
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id", "product")
	if !ok {
		return
	}

	var req wishlist.MoveToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cartResponse, err := h.wishlistService.MoveToCart(c.Request.Context(), sess, principal.UserID, productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product moved to cart",
		"data":    cartResponse,
	})
}
