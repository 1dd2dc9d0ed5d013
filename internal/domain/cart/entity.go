// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
)

// Line is one cart entry. Price, name and image are snapshots taken when the
// line was added and are what the order is charged.
type Line struct {
	VariantID   uint            `json:"variant_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	ColorName   string          `json:"color_name"`
	SizeName    string          `json:"size_name"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	AddedAt     time.Time       `json:"added_at"`
}

// Subtotal is UnitPrice × Quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines, at most one per variant
type Cart struct {
	Lines []Line `json:"lines"`
}

// Session is the server-side state of one browsing session. It is loaded at
// the start of a request and saved at the end, and passed explicitly to the
// cart and checkout services.
type Session struct {
	ID        string    `json:"id"`
	UserID    *uint     `json:"user_id,omitempty"`
	Cart      Cart      `json:"cart"`
	BuyNow    *Cart     `json:"temp_cart,omitempty"`
	DarkMode  bool      `json:"dark_mode"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns an empty session with the given id
func NewSession(id string) *Session {
	return &Session{ID: id, Cart: Cart{Lines: []Line{}}}
}

// InsufficientStock reports that a requested quantity exceeds what is available
func InsufficientStock(available int) *apperror.Error {
	return apperror.Conflict("insufficient_stock", "not enough stock available").
		WithDetail("available", available)
}

func (c *Cart) index(variantID uint) int {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// Line returns the line for variantID, if present
func (c *Cart) Line(variantID uint) (Line, bool) {
	if i := c.index(variantID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// Add appends line or merges it into an existing line for the same variant.
// The resulting quantity must not exceed available.
func (c *Cart) Add(line Line, available int) error {
	if line.Quantity < 1 {
		return apperror.Validation("quantity must be at least 1")
	}

	if i := c.index(line.VariantID); i >= 0 {
		merged := c.Lines[i].Quantity + line.Quantity
		if merged > available {
			return InsufficientStock(available)
		}
		c.Lines[i].Quantity = merged
		return nil
	}

	if line.Quantity > available {
		return InsufficientStock(available)
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// Update replaces the quantity of an existing line
func (c *Cart) Update(variantID uint, quantity, available int) error {
	if quantity < 1 {
		return apperror.Validation("quantity must be at least 1")
	}
	i := c.index(variantID)
	if i < 0 {
		return apperror.NotFound("cart item")
	}
	if quantity > available {
		return InsufficientStock(available)
	}
	c.Lines[i].Quantity = quantity
	return nil
}

// Remove drops the line for variantID. Removing a missing line is a no-op.
func (c *Cart) Remove(variantID uint) {
	if i := c.index(variantID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// Total is the sum of all line subtotals
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount is the sum of all quantities
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

func (c *Cart) Clear() {
	c.Lines = []Line{}
}
