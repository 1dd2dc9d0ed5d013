// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/your-org/fashion-store/internal/domain/product"
)

// WishlistItem is a product saved by a customer. One row per (user, product).
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:1" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:2;index" json:"product_id"`
	AddedAt   time.Time `gorm:"not null" json:"added_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}
