package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fashion-store/internal/domain/order"
	"github.com/your-org/fashion-store/internal/domain/user"
	"github.com/your-org/fashion-store/internal/pkg/logger"
	"github.com/your-org/fashion-store/internal/pkg/testutil"
)

type recordingSender struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []*Email
}

func (r *recordingSender) Send(_ context.Context, email *Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failures > 0 {
		r.failures--
		return errors.New("relay unavailable")
	}
	r.sent = append(r.sent, email)
	return nil
}

func newTestService(sender Sender, retries int) *EmailService {
	cfg := testutil.Config()
	cfg.Email.MaxRetries = retries
	return NewEmailServiceWithSender(cfg, logger.Discard(), sender)
}

func sampleOrder() *order.Order {
	return &order.Order{
		ID:              7,
		OrderNumber:     "ORD-20260615-00007",
		TotalAmount:     decimal.RequireFromString("250"),
		Status:          order.OrderStatusPending,
		ShippingAddress: "1 Main St",
		PaymentMethod:   "cod",
		CreatedAt:       time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC),
		User:            &user.User{Username: "jane", FullName: "Jane Doe", Email: "jane@example.com"},
		Items: []order.OrderDetail{{
			ProductName: "Linen Shirt",
			ColorName:   "White",
			SizeName:    "M",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(100),
			TotalPrice:  decimal.NewFromInt(200),
		}},
	}
}

func TestSendRetries(t *testing.T) {
	sender := &recordingSender{failures: 2}
	svc := newTestService(sender, 3)

	ok := svc.Send(context.Background(), "a@example.com", "Hi", "<p>hi</p>")
	assert.True(t, ok)
	assert.Equal(t, 3, sender.calls)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"a@example.com"}, sender.sent[0].To)
}

func TestSendGivesUp(t *testing.T) {
	sender := &recordingSender{failures: 10}
	svc := newTestService(sender, 2)

	assert.False(t, svc.Send(context.Background(), "a@example.com", "Hi", "<p>hi</p>"))
	assert.Equal(t, 2, sender.calls)
}

func TestOrderPlaced(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestService(sender, 1)

	require.NoError(t, svc.OrderPlaced(context.Background(), sampleOrder()))
	svc.Close()

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, EmailTypeOrderConfirmation, msg.Type)
	assert.Equal(t, "Order Confirmation - ORD-20260615-00007", msg.Subject)
	assert.Contains(t, msg.HTMLContent, "Hello Jane Doe")
	assert.Contains(t, msg.HTMLContent, "Linen Shirt (White / M)")
	assert.Contains(t, msg.HTMLContent, "Total: 250.00")
	assert.Contains(t, msg.HTMLContent, "http://localhost:3000/orders/7")
}

func TestOrderStatusChanged(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestService(sender, 1)

	o := sampleOrder()
	o.Status = order.OrderStatusShipped
	require.NoError(t, svc.OrderStatusChanged(context.Background(), o, order.OrderStatusProcessing))
	require.NoError(t, svc.OrderCancelled(context.Background(), o))
	svc.Close()

	require.Len(t, sender.sent, 2)
	var update *Email
	for _, m := range sender.sent {
		if m.Type == EmailTypeOrderStatusUpdate {
			update = m
		}
	}
	require.NotNil(t, update)
	assert.Contains(t, update.HTMLContent, "from processing to <strong>shipped</strong>")
	assert.Contains(t, update.HTMLContent, "on its way")
}

func TestOrderMailNeedsCustomer(t *testing.T) {
	svc := newTestService(&recordingSender{}, 1)
	o := sampleOrder()
	o.User = nil

	assert.Error(t, svc.OrderPlaced(context.Background(), o))
}

func TestSendPasswordReset(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestService(sender, 1)

	svc.SendPasswordReset(context.Background(), "jane@example.com", "Jane", "tok-123")
	svc.Close()

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].HTMLContent, "http://localhost:3000/reset-password?token=tok-123")
	assert.Contains(t, sender.sent[0].HTMLContent, "60 minutes")
}

func TestResendSender(t *testing.T) {
	var got resendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	cfg := testutil.Config().Email
	cfg.APIKey = "key"
	sender, err := newResendSender(cfg, srv.URL)
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "S", HTMLContent: "<p/>"}))
	assert.Equal(t, "Fashion Store <noreply@example.com>", got.From)
	assert.Equal(t, []string{"a@example.com"}, got.To)

	_, err = newResendSender(testutil.Config().Email, srv.URL)
	assert.Error(t, err)
}

func TestResendSenderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	cfg := testutil.Config().Email
	cfg.APIKey = "key"
	sender, err := newResendSender(cfg, srv.URL)
	require.NoError(t, err)

	err = sender.Send(context.Background(), &Email{To: []string{"a@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestBuildMIMEMessage(t *testing.T) {
	cfg := testutil.Config().Email
	cfg.ReplyTo = "help@example.com"

	msg := string(buildMIMEMessage(cfg, &Email{To: []string{"a@example.com", "b@example.com"}, Subject: "Hi", HTMLContent: "<b>x</b>"}))
	assert.True(t, strings.HasPrefix(msg, "From: Fashion Store <noreply@example.com>\r\n"))
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Reply-To: help@example.com\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<b>x</b>"))
}

func TestNewEmailServiceProviders(t *testing.T) {
	cfg := testutil.Config()

	cfg.Email.Provider = "log"
	_, err := NewEmailService(cfg, logger.Discard())
	assert.NoError(t, err)

	cfg.Email.Provider = "smtp"
	_, err = NewEmailService(cfg, logger.Discard())
	assert.Error(t, err)

	cfg.Email.Provider = "pigeon"
	_, err = NewEmailService(cfg, logger.Discard())
	assert.Error(t, err)
}
