// internal/domain/newsletter/service.go
package newsletter

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"github.com/your-org/fashion-store/internal/pkg/validation"
	"gorm.io/gorm"
)

// Service manages newsletter subscriptions
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new newsletter service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{db: db, config: cfg, logger: logger}
}

// SubscribeRequest represents a newsletter signup
type SubscribeRequest struct {
	Email string `json:"email" form:"email" binding:"required"`
}

// SubscriptionListRequest represents admin list parameters
type SubscriptionListRequest struct {
	pagination.Params
	ActiveOnly bool `form:"active_only"`
}

// SubscriptionListResponse is one page of subscriptions
type SubscriptionListResponse struct {
	Subscriptions []Subscription        `json:"subscriptions"`
	Pagination    pagination.Pagination `json:"pagination"`
}

// Subscribe registers an email. An active subscription is a conflict; an
// inactive one is reactivated.
func (s *Service) Subscribe(ctx context.Context, email string) (*Subscription, error) {
	email = validation.NormalizeEmail(email)
	if !validation.Email(email) {
		return nil, apperror.Validation("a valid email is required")
	}

	now := time.Now().UTC()
	var sub Subscription

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = Subscription{Email: email, IsActive: true, SubscribedAt: now}
			return tx.Create(&sub).Error
		case err != nil:
			return err
		case sub.IsActive:
			return apperror.Conflict("already_subscribed", "this email is already subscribed")
		}

		sub.IsActive = true
		sub.SubscribedAt = now
		sub.UnsubscribedAt = nil
		return tx.Model(&sub).Updates(map[string]interface{}{
			"is_active":       true,
			"subscribed_at":   now,
			"unsubscribed_at": nil,
		}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperror.Conflict("already_subscribed", "this email is already subscribed")
	}
	if err != nil {
		return nil, apperror.FromDB(err, "subscription", "subscribe")
	}

	s.logger.WithField("email", email).Info("Newsletter subscription")
	return &sub, nil
}

// Unsubscribe deactivates the subscription for email
func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	result := s.db.WithContext(ctx).Model(&Subscription{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"is_active":       false,
			"unsubscribed_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return apperror.Persistence("unsubscribe", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("subscription")
	}
	return nil
}

// List returns subscriptions, newest first
func (s *Service) List(ctx context.Context, req *SubscriptionListRequest) (*SubscriptionListResponse, error) {
	req.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)

	query := s.db.WithContext(ctx).Model(&Subscription{})
	if req.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Persistence("count subscriptions", err)
	}

	var subs []Subscription
	if err := query.Order("subscribed_at DESC, id DESC").Offset(req.Offset()).Limit(req.Limit).Find(&subs).Error; err != nil {
		return nil, apperror.Persistence("list subscriptions", err)
	}

	return &SubscriptionListResponse{
		Subscriptions: subs,
		Pagination:    pagination.New(req.Params, total),
	}, nil
}
