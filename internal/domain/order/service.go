// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/domain/cart"
	"github.com/your-org/fashion-store/internal/domain/inventory"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/domain/user"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/auth"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Notifier sends customer notices about an order. Failures are logged by the
// caller and never undo the order change.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order) error
	OrderCancelled(ctx context.Context, o *Order) error
	OrderStatusChanged(ctx context.Context, o *Order, previous OrderStatus) error
}

// Service handles order business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	logger    *logrus.Logger
	inventory *inventory.Service
	notifier  Notifier
	now       func() time.Time
}

// NewService creates a new order service. notifier may be nil.
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, inv *inventory.Service, notifier Notifier) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		logger:    logger,
		inventory: inv,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CheckoutRequest represents checkout data. An empty shipping address falls
// back to the address on the customer's profile.
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" form:"shipping_address" binding:"max=1000"`
	Phone           string `json:"phone" form:"phone" binding:"max=20"`
	Notes           string `json:"notes" form:"notes" binding:"max=1000"`
	PaymentMethod   string `json:"payment_method" form:"payment_method" binding:"max=50"`
	BuyNow          bool   `json:"buy_now" form:"buy_now"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	pagination.Params
	Status OrderStatus `form:"status"`
	UserID uint        `form:"user_id"`
	Search string      `form:"search"`
}

// OrderListResponse represents order response with pagination
type OrderListResponse struct {
	Orders     []Order               `json:"orders"`
	Pagination pagination.Pagination `json:"pagination"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status  OrderStatus `json:"status" form:"status" binding:"required"`
	Comment string      `json:"comment" form:"comment" binding:"max=500"`
}

var (
	ErrEmptyCart           = &apperror.Error{Kind: apperror.KindValidation, Code: "empty_cart", Message: "cart is empty"}
	ErrMissingShippingInfo = &apperror.Error{Kind: apperror.KindValidation, Code: "missing_shipping_info", Message: "shipping address is required"}
)

// PlaceOrder turns the session's cart into an order. The order, its lines and
// every stock decrement commit together or not at all. The cart is cleared
// only after the commit succeeds.
func (s *Service) PlaceOrder(ctx context.Context, principal *auth.Principal, sess *cart.Session, req *CheckoutRequest) (*Order, error) {
	if principal == nil {
		return nil, apperror.Unauthorized("login required to checkout")
	}

	source := &sess.Cart
	if req.BuyNow {
		source = sess.BuyNow
	}
	if source.IsEmpty() {
		return nil, ErrEmptyCart
	}

	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = s.config.Store.DefaultPaymentMethod
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperror.Persistence("begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var customer user.User
	if err := tx.Select("id", "address", "phone", "is_active").First(&customer, principal.UserID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("account no longer exists")
		}
		return nil, apperror.Persistence("load customer", err)
	}
	if !customer.IsActive {
		tx.Rollback()
		return nil, apperror.Unauthorized("account is deactivated")
	}

	shipping := strings.TrimSpace(req.ShippingAddress)
	if shipping == "" {
		shipping = strings.TrimSpace(customer.Address)
	}
	if shipping == "" {
		tx.Rollback()
		return nil, ErrMissingShippingInfo
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = customer.Phone
	}

	if err := ensurePurchasable(tx, source.Lines); err != nil {
		tx.Rollback()
		return nil, err
	}

	order := Order{
		// Placeholder keeps the unique index satisfied until the ID is known
		OrderNumber:     "TMP-" + uuid.NewString(),
		UserID:          principal.UserID,
		TotalAmount:     source.Total(),
		Status:          OrderStatusPending,
		ShippingAddress: shipping,
		Phone:           phone,
		Notes:           strings.TrimSpace(req.Notes),
		PaymentMethod:   paymentMethod,
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, apperror.Persistence("create order", err)
	}

	order.OrderNumber = GenerateOrderNumber(order.ID, s.now())
	if err := tx.Model(&order).Update("order_number", order.OrderNumber).Error; err != nil {
		tx.Rollback()
		return nil, apperror.Persistence("assign order number", err)
	}

	ref := inventory.OrderReference(order.ID, &principal.UserID)
	for _, line := range source.Lines {
		if _, err := s.inventory.Decrement(tx, line.VariantID, line.Quantity, ref); err != nil {
			tx.Rollback()
			return nil, err
		}

		detail := OrderDetail{
			OrderID:     order.ID,
			VariantID:   line.VariantID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			ColorName:   line.ColorName,
			SizeName:    line.SizeName,
			SKU:         line.SKU,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.Subtotal(),
		}
		if err := tx.Create(&detail).Error; err != nil {
			tx.Rollback()
			return nil, apperror.Persistence("create order line", err)
		}
	}

	if err := writeHistory(tx, order.ID, "", OrderStatusPending, "Order placed", principal.UserID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperror.Persistence("commit order", err)
	}

	if !req.BuyNow {
		sess.Cart.Clear()
	}
	sess.BuyNow = nil

	placed, err := s.load(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     placed.ID,
		"order_number": placed.OrderNumber,
		"user_id":      principal.UserID,
		"total":        placed.TotalAmount.StringFixed(2),
		"lines":        len(placed.Items),
	}).Info("Order placed")

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, placed); err != nil {
			s.logger.WithError(err).WithField("order_id", placed.ID).Warn("Failed to send order confirmation")
		}
	}

	return placed, nil
}

// CancelOrder cancels one of the customer's own orders and returns its stock.
// Orders of other customers are reported as not found.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	var existing Order
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", orderID, userID).First(&existing).Error
	if err != nil {
		return nil, apperror.FromDB(err, "order", "load order")
	}

	if err := s.cancel(ctx, &existing, userID, "Cancelled by customer"); err != nil {
		return nil, err
	}

	cancelled, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.OrderCancelled(ctx, cancelled); err != nil {
			s.logger.WithError(err).WithField("order_id", orderID).Warn("Failed to send cancellation notice")
		}
	}

	return cancelled, nil
}

// UpdateStatus moves an order along the lifecycle on behalf of an admin.
// Moving to cancelled restores stock like a customer cancellation.
func (s *Service) UpdateStatus(ctx context.Context, adminID, orderID uint, req *UpdateStatusRequest) (*Order, error) {
	if !req.Status.Valid() {
		return nil, apperror.Validation("unknown order status %q", req.Status)
	}

	var existing Order
	if err := s.db.WithContext(ctx).First(&existing, orderID).Error; err != nil {
		return nil, apperror.FromDB(err, "order", "load order")
	}

	if !CanTransition(existing.Status, req.Status) {
		return nil, invalidTransition(existing.Status, req.Status)
	}

	previous := existing.Status
	comment := strings.TrimSpace(req.Comment)

	if req.Status == OrderStatusCancelled {
		if comment == "" {
			comment = "Cancelled by admin"
		}
		if err := s.cancel(ctx, &existing, adminID, comment); err != nil {
			return nil, err
		}
	} else {
		if err := s.advance(ctx, &existing, req.Status, adminID, comment); err != nil {
			return nil, err
		}
	}

	updated, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       req.Status,
		"admin_id": adminID,
	}).Info("Order status updated")

	if s.notifier != nil {
		var notifyErr error
		if req.Status == OrderStatusCancelled {
			notifyErr = s.notifier.OrderCancelled(ctx, updated)
		} else {
			notifyErr = s.notifier.OrderStatusChanged(ctx, updated, previous)
		}
		if notifyErr != nil {
			s.logger.WithError(notifyErr).WithField("order_id", orderID).Warn("Failed to send status notice")
		}
	}

	return updated, nil
}

// GetUserOrders lists a customer's orders, newest first
func (s *Service) GetUserOrders(ctx context.Context, userID uint, params pagination.Params) (*OrderListResponse, error) {
	return s.ListOrders(ctx, &OrderListRequest{Params: params, UserID: userID})
}

// GetOrder returns one of the customer's own orders
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apperror.NotFound("order")
	}
	return o, nil
}

// GetOrderByID returns any order with its lines, customer and history
func (s *Service) GetOrderByID(ctx context.Context, orderID uint) (*Order, error) {
	return s.load(ctx, orderID)
}

// ListOrders retrieves orders with filtering and pagination
func (s *Service) ListOrders(ctx context.Context, req *OrderListRequest) (*OrderListResponse, error) {
	req.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)

	query := s.db.WithContext(ctx).Model(&Order{})

	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperror.Validation("unknown order status %q", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		query = query.Where("order_number LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Persistence("count orders", err)
	}

	var orders []Order
	err := query.
		Preload("Items").
		Preload("User").
		Order("created_at DESC, id DESC").
		Offset(req.Offset()).
		Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Persistence("list orders", err)
	}

	return &OrderListResponse{
		Orders:     orders,
		Pagination: pagination.New(req.Params, total),
	}, nil
}

// cancel moves the order to cancelled with a guarded update and restores every
// line's quantity in the same transaction. A concurrent cancellation or a
// terminal status leaves zero rows matched, which is reported as a conflict.
func (s *Service) cancel(ctx context.Context, o *Order, actorID uint, comment string) error {
	if !o.CanBeCancelled() {
		return invalidTransition(o.Status, OrderStatusCancelled)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperror.Persistence("begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	now := s.now()
	result := tx.Model(&Order{}).
		Where("id = ? AND status IN ?", o.ID, cancellable).
		Updates(map[string]interface{}{
			"status":       OrderStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		tx.Rollback()
		return apperror.Persistence("cancel order", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return apperror.Conflict("invalid_transition", "order can no longer be cancelled")
	}

	var items []OrderDetail
	if err := tx.Where("order_id = ?", o.ID).Find(&items).Error; err != nil {
		tx.Rollback()
		return apperror.Persistence("load order lines", err)
	}

	ref := inventory.OrderReference(o.ID, &actorID)
	for _, item := range items {
		if _, err := s.inventory.Restore(tx, item.VariantID, item.Quantity, ref); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := writeHistory(tx, o.ID, o.Status, OrderStatusCancelled, comment, actorID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperror.Persistence("commit cancellation", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"actor_id": actorID,
		"lines":    len(items),
	}).Info("Order cancelled")

	return nil
}

// advance applies a non-cancelling transition guarded on the status it was
// validated against
func (s *Service) advance(ctx context.Context, o *Order, to OrderStatus, actorID uint, comment string) error {
	now := s.now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	if column := statusTimestampColumn(to); column != "" {
		updates[column] = now
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Order{}).
			Where("id = ? AND status = ?", o.ID, o.Status).
			Updates(updates)
		if result.Error != nil {
			return apperror.Persistence("update order status", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.Conflict("invalid_transition", "order status changed concurrently")
		}
		return writeHistory(tx, o.ID, o.Status, to, comment, actorID)
	})
}

func (s *Service) load(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("User").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&o, orderID).Error
	if err != nil {
		return nil, apperror.FromDB(err, "order", "load order")
	}
	return &o, nil
}

// ensurePurchasable checks every line still points at a variant of an active
// product
func ensurePurchasable(tx *gorm.DB, lines []cart.Line) error {
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, line := range lines {
		if !seen[line.VariantID] {
			seen[line.VariantID] = true
			ids = append(ids, line.VariantID)
		}
	}

	var count int64
	err := tx.Model(&product.ProductVariant{}).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.id IN ? AND products.is_active = ?", ids, true).
		Count(&count).Error
	if err != nil {
		return apperror.Persistence("check variants", err)
	}
	if int(count) != len(ids) {
		return apperror.NotFound("product variant")
	}
	return nil
}

func writeHistory(tx *gorm.DB, orderID uint, from, to OrderStatus, comment string, actorID uint) error {
	history := OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: from,
		Status:     to,
		Comment:    comment,
		CreatedBy:  actorID,
	}
	if err := tx.Create(&history).Error; err != nil {
		return apperror.Persistence("record status history", err)
	}
	return nil
}

func invalidTransition(from, to OrderStatus) *apperror.Error {
	return apperror.Conflict("invalid_transition", "order cannot move from "+string(from)+" to "+string(to)).
		WithDetail("from", from).
		WithDetail("to", to)
}
