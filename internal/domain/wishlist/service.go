// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/domain/cart"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartAdder is the part of the cart service used to move items out of the wishlist
type CartAdder interface {
	AddToCart(ctx context.Context, sess *cart.Session, req *cart.AddToCartRequest) (*cart.CartResponse, error)
}

// Service handles wishlist business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
	carts  CartAdder
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, carts CartAdder) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
		carts:  carts,
	}
}

// ToggleResponse reports the wishlist state after a toggle
type ToggleResponse struct {
	ProductID  uint  `json:"product_id"`
	InWishlist bool  `json:"in_wishlist"`
	Count      int64 `json:"count"`
}

// WishlistResponse represents a wishlist page with a summary
type WishlistResponse struct {
	Items      []WishlistItem        `json:"items"`
	Pagination pagination.Pagination `json:"pagination"`
	Summary    WishlistSummary       `json:"summary"`
}

// WishlistSummary provides summary information
type WishlistSummary struct {
	TotalItems       int64           `json:"total_items"`
	AvailableItems   int64           `json:"available_items"`
	UnavailableItems int64           `json:"unavailable_items"`
	TotalValue       decimal.Decimal `json:"total_value"`
}

// MoveToCartRequest picks the variant of a wishlisted product to add to the cart
type MoveToCartRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// Toggle adds the product to the wishlist, or removes it when already present
func (s *Service) Toggle(ctx context.Context, userID, productID uint) (*ToggleResponse, error) {
	resp := &ToggleResponse{ProductID: productID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p product.Product
		if err := tx.Select("id").First(&p, productID).Error; err != nil {
			return apperror.FromDB(err, "product", "load product")
		}

		removed := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItem{})
		if removed.Error != nil {
			return apperror.Persistence("remove wishlist item", removed.Error)
		}

		if removed.RowsAffected == 0 {
			item := WishlistItem{UserID: userID, ProductID: productID, AddedAt: time.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
				return apperror.Persistence("add wishlist item", err)
			}
			resp.InWishlist = true
		}

		return tx.Model(&WishlistItem{}).Where("user_id = ?", userID).Count(&resp.Count).Error
	})
	if err != nil {
		return nil, apperror.FromDB(err, "wishlist", "toggle wishlist item")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"product_id":  productID,
		"in_wishlist": resp.InWishlist,
	}).Debug("Wishlist toggled")

	return resp, nil
}

// List returns the customer's wishlist with product and category, newest first
func (s *Service) List(ctx context.Context, userID uint, params pagination.Params) (*WishlistResponse, error) {
	params.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)
	db := s.db.WithContext(ctx)

	query := db.Model(&WishlistItem{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Persistence("count wishlist items", err)
	}

	var items []WishlistItem
	err := query.
		Preload("Product").
		Preload("Product.Category").
		Order("added_at DESC, id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&items).Error
	if err != nil {
		return nil, apperror.Persistence("list wishlist items", err)
	}

	summary, err := s.summary(db, userID)
	if err != nil {
		return nil, err
	}

	return &WishlistResponse{
		Items:      items,
		Pagination: pagination.New(params, total),
		Summary:    *summary,
	}, nil
}

// IsInWishlist checks if a product is in the user's wishlist
func (s *Service) IsInWishlist(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, apperror.Persistence("check wishlist", err)
	}
	return count > 0, nil
}

// ProductIDs returns the wishlisted product IDs, for marking listings
func (s *Service) ProductIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user_id = ?", userID).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, apperror.Persistence("list wishlist products", err)
	}
	return ids, nil
}

// Remove deletes a product from the wishlist
func (s *Service) Remove(ctx context.Context, userID, productID uint) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&WishlistItem{})
	if result.Error != nil {
		return apperror.Persistence("remove wishlist item", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("wishlist item")
	}
	return nil
}

// MoveToCart adds a variant of a wishlisted product to the session cart and
// drops the product from the wishlist. The wishlist is untouched when the cart
// rejects the line.
func (s *Service) MoveToCart(ctx context.Context, sess *cart.Session, userID, productID uint, req *MoveToCartRequest) (*cart.CartResponse, error) {
	in, err := s.IsInWishlist(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !in {
		return nil, apperror.NotFound("wishlist item")
	}

	var variant product.ProductVariant
	if err := s.db.WithContext(ctx).Select("id", "product_id").First(&variant, req.VariantID).Error; err != nil {
		return nil, apperror.FromDB(err, "product variant", "load variant")
	}
	if variant.ProductID != productID {
		return nil, apperror.Validation("variant %d does not belong to product %d", req.VariantID, productID)
	}

	resp, err := s.carts.AddToCart(ctx, sess, &cart.AddToCartRequest{VariantID: req.VariantID, Quantity: req.Quantity})
	if err != nil {
		return nil, err
	}

	if err := s.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}

	return resp, nil
}

func (s *Service) summary(db *gorm.DB, userID uint) (*WishlistSummary, error) {
	var products []product.Product
	err := db.Model(&product.Product{}).
		Select("products.id", "products.base_price", "products.is_active").
		Joins("JOIN wishlist_items ON wishlist_items.product_id = products.id").
		Where("wishlist_items.user_id = ?", userID).
		Find(&products).Error
	if err != nil {
		return nil, apperror.Persistence("summarize wishlist", err)
	}

	summary := &WishlistSummary{TotalItems: int64(len(products)), TotalValue: decimal.Zero}
	for _, p := range products {
		if !p.IsActive {
			summary.UnavailableItems++
			continue
		}
		summary.AvailableItems++
		summary.TotalValue = summary.TotalValue.Add(p.BasePrice)
	}
	return summary, nil
}
