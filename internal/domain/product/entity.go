// internal/domain/product/entity.go
package product

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item. Products are never deleted, only deactivated,
// so order lines that reference their variants stay resolvable.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:200;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	ImageURL    string          `gorm:"size:500" json:"image_url"`
	IsActive    bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	Category Category         `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"variants,omitempty"`
}

// Category groups products for browsing and revenue reports
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Color struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"uniqueIndex;not null;size:50" json:"name"`
	HexCode string `gorm:"size:7" json:"hex_code"`
}

type Size struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex;not null;size:20" json:"name"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}

// ProductVariant is one color/size combination of a product with its own price
// and stock. (product, color, size) is unique and stock never goes negative.
type ProductVariant struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProductID     uint            `gorm:"not null;uniqueIndex:idx_variant_product_color_size,priority:1" json:"product_id"`
	ColorID       uint            `gorm:"not null;uniqueIndex:idx_variant_product_color_size,priority:2" json:"color_id"`
	SizeID        uint            `gorm:"not null;uniqueIndex:idx_variant_product_color_size,priority:3" json:"size_id"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0;check:chk_variant_stock_non_negative,stock_quantity >= 0" json:"stock_quantity"`
	SKU           string          `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Color   Color    `gorm:"foreignKey:ColorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"color"`
	Size    Size     `gorm:"foreignKey:SizeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"size"`
}

// ProductReview is a customer's rating of a product. One per (user, product).
type ProductReview struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_review_user_product,priority:2;index" json:"product_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_user_product,priority:1" json:"user_id"`
	Rating    int       `gorm:"not null;check:chk_review_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductComment is a free-form question or remark on a product, subject to
// moderation and an optional admin reply.
type ProductComment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ProductID  uint       `gorm:"not null;index:idx_comment_product_visible,priority:1" json:"product_id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsVisible  bool       `gorm:"not null;index:idx_comment_product_visible,priority:2" json:"is_visible"`
	AdminReply string     `gorm:"type:text" json:"admin_reply,omitempty"`
	ReplyDate  *time.Time `json:"reply_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (Category) TableName() string       { return "categories" }
func (Color) TableName() string          { return "colors" }
func (Size) TableName() string           { return "sizes" }
func (ProductVariant) TableName() string { return "product_variants" }
func (ProductReview) TableName() string  { return "product_reviews" }
func (ProductComment) TableName() string { return "product_comments" }

func (v *ProductVariant) IsInStock() bool {
	return v.StockQuantity > 0
}

// MatrixKey identifies the variant's cell in the color × size grid
func (v *ProductVariant) MatrixKey() string {
	return fmt.Sprintf("%d_%d", v.ColorID, v.SizeID)
}
