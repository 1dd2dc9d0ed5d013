// internal/pkg/email/notifications.go
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/your-org/fashion-store/internal/domain/order"
)

var statusMessages = map[order.OrderStatus]string{
	order.OrderStatusPending:    "We have received your order.",
	order.OrderStatusProcessing: "Your order is being prepared.",
	order.OrderStatusShipped:    "Your order is on its way.",
	order.OrderStatusCompleted:  "Your order has been delivered. Thank you for shopping with us!",
	order.OrderStatusCancelled:  "Your order has been cancelled. Any reserved items were released.",
}

// SendPasswordReset mails a reset link carrying token
func (s *EmailService) SendPasswordReset(ctx context.Context, to, name, token string) {
	data := PasswordResetData{
		EmailTemplateData: s.baseData(name, to),
		ResetURL:          fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, token),
		ExpiryTime:        fmt.Sprintf("%.0f minutes", s.config.Security.PasswordResetTTL.Minutes()),
	}

	html, err := s.renderTemplate("password_reset", data)
	if err != nil {
		s.logger.WithError(err).Error("Failed to render password reset email")
		return
	}

	s.dispatch(ctx, &Email{
		To:          []string{to},
		Subject:     "Reset Your Password",
		HTMLContent: html,
		Type:        EmailTypePasswordReset,
	})
}

// OrderPlaced sends the order confirmation
func (s *EmailService) OrderPlaced(ctx context.Context, o *order.Order) error {
	return s.sendOrderEmail(ctx, o, "", "order_confirmation", EmailTypeOrderConfirmation,
		fmt.Sprintf("Order Confirmation - %s", o.OrderNumber))
}

// OrderCancelled sends the cancellation notice
func (s *EmailService) OrderCancelled(ctx context.Context, o *order.Order) error {
	return s.sendOrderEmail(ctx, o, "", "order_cancelled", EmailTypeOrderCancelled,
		fmt.Sprintf("Order Cancelled - %s", o.OrderNumber))
}

// OrderStatusChanged sends a status update after an admin change
func (s *EmailService) OrderStatusChanged(ctx context.Context, o *order.Order, previous order.OrderStatus) error {
	return s.sendOrderEmail(ctx, o, previous, "order_status_update", EmailTypeOrderStatusUpdate,
		fmt.Sprintf("Order Update - %s", o.OrderNumber))
}

func (s *EmailService) sendOrderEmail(ctx context.Context, o *order.Order, previous order.OrderStatus, tmpl string, kind EmailType, subject string) error {
	to := o.CustomerEmail()
	if to == "" {
		return fmt.Errorf("order %s has no customer email", o.OrderNumber)
	}

	html, err := s.renderTemplate(tmpl, s.orderData(o, previous))
	if err != nil {
		return err
	}

	s.dispatch(ctx, &Email{
		To:          []string{to},
		Subject:     subject,
		HTMLContent: html,
		Type:        kind,
	})
	return nil
}

func (s *EmailService) orderData(o *order.Order, previous order.OrderStatus) OrderEmailData {
	data := OrderEmailData{
		EmailTemplateData: s.baseData(o.CustomerName(), o.CustomerEmail()),
		OrderNumber:       o.OrderNumber,
		OrderDate:         o.CreatedAt.Format("January 2, 2006"),
		OrderTotal:        o.TotalAmount.StringFixed(2),
		OrderURL:          fmt.Sprintf("%s/orders/%d", s.config.App.BaseURL, o.ID),
		PaymentMethod:     strings.ToUpper(o.PaymentMethod),
		ShippingAddress:   o.ShippingAddress,
		Status:            string(o.Status),
		PreviousStatus:    string(previous),
		StatusMessage:     statusMessages[o.Status],
	}

	for _, item := range o.Items {
		var variant []string
		if item.ColorName != "" {
			variant = append(variant, item.ColorName)
		}
		if item.SizeName != "" {
			variant = append(variant, item.SizeName)
		}
		data.Items = append(data.Items, OrderItem{
			Name:     item.ProductName,
			Variant:  strings.Join(variant, " / "),
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    item.UnitPrice.StringFixed(2),
			Total:    item.TotalPrice.StringFixed(2),
		})
	}
	return data
}
