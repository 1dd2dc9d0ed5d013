// internal/domain/newsletter/entity.go
package newsletter

import "time"

// Subscription is a newsletter signup. Unsubscribing deactivates the row so a
// later signup reactivates it.
type Subscription struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null;size:120" json:"email"`
	IsActive       bool       `gorm:"not null;index" json:"is_active"`
	SubscribedAt   time.Time  `gorm:"not null" json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Subscription) TableName() string { return "newsletter_subscriptions" }
