// internal/pkg/email/types.go
package email

import (
	"context"
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypePasswordReset     EmailType = "password_reset"
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderCancelled    EmailType = "order_cancelled"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// Sender delivers a single message through a provider
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName     string
	SiteURL      string
	SupportEmail string
	UserName     string
	UserEmail    string
	Year         int
}

// PasswordResetData contains data for password reset email
type PasswordResetData struct {
	EmailTemplateData
	ResetURL   string
	ExpiryTime string
}

// OrderEmailData is shared by the confirmation, cancellation and status mails
type OrderEmailData struct {
	EmailTemplateData
	OrderNumber     string
	OrderDate       string
	OrderTotal      string
	OrderURL        string
	PaymentMethod   string
	ShippingAddress string
	Items           []OrderItem
	Status          string
	PreviousStatus  string
	StatusMessage   string
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name     string
	Variant  string
	SKU      string
	Quantity int
	Price    string
	Total    string
}

func baseTemplateData(siteName, siteURL, supportEmail, userName, userEmail string, now time.Time) EmailTemplateData {
	return EmailTemplateData{
		SiteName:     siteName,
		SiteURL:      siteURL,
		SupportEmail: supportEmail,
		UserName:     userName,
		UserEmail:    userEmail,
		Year:         now.Year(),
	}
}
