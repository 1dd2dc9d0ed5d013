// internal/domain/contact/service.go
package contact

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"github.com/your-org/fashion-store/internal/pkg/validation"
	"gorm.io/gorm"
)

// Service stores contact messages and lets admins triage them
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new contact service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{db: db, config: cfg, logger: logger}
}

// SubmitRequest represents a contact form submission
type SubmitRequest struct {
	Name    string `json:"name" form:"name" binding:"required,max=100"`
	Email   string `json:"email" form:"email" binding:"required,max=120"`
	Subject string `json:"subject" form:"subject" binding:"max=200"`
	Message string `json:"message" form:"message" binding:"required,max=5000"`
}

// MessageListRequest represents admin list parameters
type MessageListRequest struct {
	pagination.Params
	UnreadOnly bool `form:"unread_only"`
}

// MessageListResponse is one page of messages with the unread total
type MessageListResponse struct {
	Messages    []Message             `json:"messages"`
	UnreadCount int64                 `json:"unread_count"`
	Pagination  pagination.Pagination `json:"pagination"`
}

// MarkReadRequest sets the read flag of a message
type MarkReadRequest struct {
	IsRead bool `json:"is_read" form:"is_read"`
}

// Submit stores a contact message. Name, email and message are required.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*Message, error) {
	msg := Message{
		Name:    strings.TrimSpace(req.Name),
		Email:   validation.NormalizeEmail(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}

	if msg.Name == "" || msg.Message == "" {
		return nil, apperror.Validation("name, email and message are required")
	}
	if !validation.Email(msg.Email) {
		return nil, apperror.Validation("a valid email is required")
	}

	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, apperror.Persistence("save contact message", err)
	}

	s.logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"email":      msg.Email,
	}).Info("Contact message received")

	return &msg, nil
}

// List returns messages newest first
func (s *Service) List(ctx context.Context, req *MessageListRequest) (*MessageListResponse, error) {
	req.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)
	db := s.db.WithContext(ctx)

	query := db.Model(&Message{})
	if req.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Persistence("count contact messages", err)
	}

	var messages []Message
	if err := query.Order("created_at DESC, id DESC").Offset(req.Offset()).Limit(req.Limit).Find(&messages).Error; err != nil {
		return nil, apperror.Persistence("list contact messages", err)
	}

	var unread int64
	if err := db.Model(&Message{}).Where("is_read = ?", false).Count(&unread).Error; err != nil {
		return nil, apperror.Persistence("count unread messages", err)
	}

	return &MessageListResponse{
		Messages:    messages,
		UnreadCount: unread,
		Pagination:  pagination.New(req.Params, total),
	}, nil
}

// MarkRead sets the read flag of a message
func (s *Service) MarkRead(ctx context.Context, id uint, read bool) error {
	result := s.db.WithContext(ctx).Model(&Message{}).Where("id = ?", id).Update("is_read", read)
	if result.Error != nil {
		return apperror.Persistence("update contact message", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("contact message")
	}
	return nil
}
