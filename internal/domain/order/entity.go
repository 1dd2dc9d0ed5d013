// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/domain/user"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// transitions lists the statuses reachable from each non-terminal status
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusShipped, OrderStatusCancelled},
}

// cancellable are the statuses a cancellation may start from
var cancellable = []OrderStatus{OrderStatusPending, OrderStatusProcessing}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	_, ok := transitions[s]
	return !ok
}

// CanTransition reports whether the lifecycle allows moving from -> to
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a placed order. Its total equals the sum of its lines at creation.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status          OrderStatus     `gorm:"not null;size:20;default:'pending';index" json:"status"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	Phone           string          `gorm:"size:20" json:"phone"`
	Notes           string          `gorm:"type:text" json:"notes"`
	PaymentMethod   string          `gorm:"size:50;not null" json:"payment_method"`

	ProcessedAt *time.Time `json:"processed_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User          *user.User           `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user,omitempty"`
	Items         []OrderDetail        `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderDetail is an immutable order line. Names are snapshots so the line
// still reads correctly after the catalog changes.
type OrderDetail struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	VariantID   uint            `gorm:"not null;index" json:"variant_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:200" json:"product_name"`
	ColorName   string          `gorm:"size:50" json:"color_name"`
	SizeName    string          `gorm:"size:20" json:"size_name"`
	SKU         string          `gorm:"size:100" json:"sku"`
	Quantity    int             `gorm:"not null;check:chk_order_detail_quantity_positive,quantity > 0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`

	Variant *product.ProductVariant `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"size:20" json:"from_status,omitempty"`
	Status     OrderStatus `gorm:"not null;size:20" json:"status"`
	Comment    string      `gorm:"type:text" json:"comment"`
	CreatedBy  uint        `gorm:"index" json:"created_by"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (Order) TableName() string              { return "orders" }
func (OrderDetail) TableName() string        { return "order_details" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber formats the public order number. Format: ORD-YYYYMMDD-XXXXX
func GenerateOrderNumber(id uint, at time.Time) string {
	return fmt.Sprintf("ORD-%s-%05d", at.Format("20060102"), id)
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return CanTransition(o.Status, OrderStatusCancelled)
}

// ItemCount is the number of units across all lines
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// CustomerEmail returns the email of the loaded customer, if any
func (o *Order) CustomerEmail() string {
	if o.User == nil {
		return ""
	}
	return o.User.Email
}

// CustomerName returns the display name of the loaded customer, if any
func (o *Order) CustomerName() string {
	if o.User == nil {
		return ""
	}
	return o.User.GetDisplayName()
}

// statusTimestampColumn names the column stamped when an order enters status
func statusTimestampColumn(status OrderStatus) string {
	switch status {
	case OrderStatusProcessing:
		return "processed_at"
	case OrderStatusShipped:
		return "shipped_at"
	case OrderStatusCompleted:
		return "completed_at"
	case OrderStatusCancelled:
		return "cancelled_at"
	}
	return ""
}
