// internal/domain/cart/service.go
package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
)

// VariantLookup resolves a variant with its product, color and size
type VariantLookup interface {
	GetVariant(ctx context.Context, id uint) (*product.ProductVariant, error)
}

// Service applies cart operations to a session. It never persists the session
// itself; the caller saves it once the request is done.
type Service struct {
	variants VariantLookup
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(variants VariantLookup, logger *logrus.Logger) *Service {
	return &Service{
		variants: variants,
		logger:   logger,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	VariantID uint `json:"variant_id" form:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" form:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" form:"quantity" binding:"required,min=1"`
}

// LineResponse is a cart line with its computed subtotal
type LineResponse struct {
	Line
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartResponse represents cart response
type CartResponse struct {
	Lines     []LineResponse  `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// GetCart returns the session's persistent cart
func (s *Service) GetCart(sess *Session) *CartResponse {
	return buildResponse(&sess.Cart)
}

// GetBuyNow returns the pending buy-now cart, if any
func (s *Service) GetBuyNow(sess *Session) *CartResponse {
	if sess.BuyNow == nil {
		return buildResponse(&Cart{})
	}
	return buildResponse(sess.BuyNow)
}

// AddToCart adds a variant to the session cart. Adding a variant that is
// already in the cart merges the quantities and re-checks the merged total.
func (s *Service) AddToCart(ctx context.Context, sess *Session, req *AddToCartRequest) (*CartResponse, error) {
	line, available, err := s.snapshot(ctx, req.VariantID, req.Quantity)
	if err != nil {
		return nil, err
	}

	if err := sess.Cart.Add(line, available); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"variant_id": req.VariantID,
		"quantity":   req.Quantity,
	}).Debug("Added to cart")

	return buildResponse(&sess.Cart), nil
}

// BuyNow replaces the session's buy-now cart with a single line. The regular
// cart is left untouched.
func (s *Service) BuyNow(ctx context.Context, sess *Session, req *AddToCartRequest) (*CartResponse, error) {
	line, available, err := s.snapshot(ctx, req.VariantID, req.Quantity)
	if err != nil {
		return nil, err
	}

	buyNow := &Cart{Lines: []Line{}}
	if err := buyNow.Add(line, available); err != nil {
		return nil, err
	}
	sess.BuyNow = buyNow

	return buildResponse(buyNow), nil
}

// UpdateCartItem sets the quantity of a cart line against current stock
func (s *Service) UpdateCartItem(ctx context.Context, sess *Session, variantID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperror.Validation("quantity must be at least 1")
	}
	if _, ok := sess.Cart.Line(variantID); !ok {
		return nil, apperror.NotFound("cart item")
	}

	variant, err := s.variants.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	if err := sess.Cart.Update(variantID, req.Quantity, variant.StockQuantity); err != nil {
		return nil, err
	}

	return buildResponse(&sess.Cart), nil
}

// RemoveFromCart drops a line. Missing lines are ignored.
func (s *Service) RemoveFromCart(sess *Session, variantID uint) *CartResponse {
	sess.Cart.Remove(variantID)
	return buildResponse(&sess.Cart)
}

// ClearCart empties the cart and discards any buy-now cart
func (s *Service) ClearCart(sess *Session) {
	sess.Cart.Clear()
	sess.BuyNow = nil
}

// snapshot validates the request against the catalog and captures the line
func (s *Service) snapshot(ctx context.Context, variantID uint, quantity int) (Line, int, error) {
	if quantity < 1 {
		return Line{}, 0, apperror.Validation("quantity must be at least 1")
	}

	variant, err := s.variants.GetVariant(ctx, variantID)
	if err != nil {
		return Line{}, 0, err
	}
	if variant.Product == nil || !variant.Product.IsActive {
		return Line{}, 0, apperror.NotFound("product variant")
	}
	if quantity > variant.StockQuantity {
		return Line{}, 0, InsufficientStock(variant.StockQuantity)
	}

	line := Line{
		VariantID:   variant.ID,
		ProductID:   variant.ProductID,
		ProductName: variant.Product.Name,
		ImageURL:    variant.Product.ImageURL,
		ColorName:   variant.Color.Name,
		SizeName:    variant.Size.Name,
		SKU:         variant.SKU,
		UnitPrice:   variant.Price,
		Quantity:    quantity,
		AddedAt:     time.Now().UTC(),
	}

	return line, variant.StockQuantity, nil
}

func buildResponse(c *Cart) *CartResponse {
	resp := &CartResponse{
		Lines:     make([]LineResponse, 0, len(c.Lines)),
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
	}
	for _, line := range c.Lines {
		resp.Lines = append(resp.Lines, LineResponse{Line: line, Subtotal: line.Subtotal()})
	}
	return resp
}
