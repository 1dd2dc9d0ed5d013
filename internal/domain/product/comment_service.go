// internal/domain/product/comment_service.go
package product

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"gorm.io/gorm"
)

// CommentService handles product comments and their moderation
type CommentService struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *CommentService {
	return &CommentService{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// AddComment stores a comment. Its visibility starts at the configured
// moderation default (Store.CommentsAutoApprove).
func (s *CommentService) AddComment(ctx context.Context, userID, productID uint, content string) (*ProductComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.Validation("comment cannot be empty")
	}

	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &Product{}, productID, "product"); err != nil {
		return nil, err
	}

	comment := &ProductComment{
		ProductID: productID,
		UserID:    userID,
		Content:   content,
		IsVisible: s.config.Store.CommentsAutoApprove,
	}

	if err := db.Create(comment).Error; err != nil {
		return nil, apperror.FromDB(err, "comment", "save comment")
	}

	s.logger.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"product_id": productID,
		"user_id":    userID,
		"is_visible": comment.IsVisible,
	}).Info("Comment added")

	return comment, nil
}

// GetComments returns the visible comments of a product, newest first
func (s *CommentService) GetComments(ctx context.Context, productID uint) ([]CommentView, error) {
	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &Product{}, productID, "product"); err != nil {
		return nil, err
	}
	return visibleComments(db, productID)
}

// AdminListComments returns the moderation queue, newest first
func (s *CommentService) AdminListComments(ctx context.Context, req *CommentListRequest) (*CommentListResponse, error) {
	req.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)

	query := s.db.WithContext(ctx).Model(&ProductComment{})
	if req.ProductID > 0 {
		query = query.Where("product_comments.product_id = ?", req.ProductID)
	}
	if req.Visible != nil {
		query = query.Where("product_comments.is_visible = ?", *req.Visible)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Persistence("count comments", err)
	}

	var comments []AdminCommentView
	err := query.
		Select("product_comments.*, COALESCE(NULLIF(users.full_name, ''), users.username) AS author_name, products.name AS product_name").
		Joins("LEFT JOIN users ON users.id = product_comments.user_id").
		Joins("LEFT JOIN products ON products.id = product_comments.product_id").
		Order("product_comments.created_at DESC, product_comments.id DESC").
		Offset(req.Offset()).
		Limit(req.Limit).
		Scan(&comments).Error
	if err != nil {
		return nil, apperror.Persistence("list comments", err)
	}

	return &CommentListResponse{
		Comments:   comments,
		Pagination: pagination.New(req.Params, total),
	}, nil
}

// ReplyComment sets the admin reply. Visibility is left as it is.
func (s *CommentService) ReplyComment(ctx context.Context, commentID uint, reply string) (*ProductComment, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, apperror.Validation("reply cannot be empty")
	}

	db := s.db.WithContext(ctx)

	var comment ProductComment
	if err := db.First(&comment, commentID).Error; err != nil {
		return nil, apperror.FromDB(err, "comment", "load comment")
	}

	now := time.Now().UTC()
	err := db.Model(&comment).Updates(map[string]interface{}{
		"admin_reply": reply,
		"reply_date":  now,
	}).Error
	if err != nil {
		return nil, apperror.Persistence("save reply", err)
	}

	comment.AdminReply = reply
	comment.ReplyDate = &now

	s.logger.WithField("comment_id", commentID).Info("Comment replied")

	return &comment, nil
}

// ToggleVisibility flips the moderation flag and returns the new value
func (s *CommentService) ToggleVisibility(ctx context.Context, commentID uint) (bool, error) {
	var visible bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ProductComment{}).
			Where("id = ?", commentID).
			UpdateColumn("is_visible", gorm.Expr("NOT is_visible"))
		if result.Error != nil {
			return apperror.Persistence("toggle comment visibility", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("comment")
		}

		var comment ProductComment
		if err := tx.Select("id", "is_visible").First(&comment, commentID).Error; err != nil {
			return apperror.FromDB(err, "comment", "load comment")
		}
		visible = comment.IsVisible
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.WithFields(logrus.Fields{
		"comment_id": commentID,
		"is_visible": visible,
	}).Info("Comment visibility toggled")

	return visible, nil
}

func visibleComments(db *gorm.DB, productID uint) ([]CommentView, error) {
	comments := []CommentView{}
	err := db.Model(&ProductComment{}).
		Select("product_comments.*, COALESCE(NULLIF(users.full_name, ''), users.username) AS author_name").
		Joins("LEFT JOIN users ON users.id = product_comments.user_id").
		Where("product_comments.product_id = ? AND product_comments.is_visible = ?", productID, true).
		Order("product_comments.created_at DESC, product_comments.id DESC").
		Scan(&comments).Error
	if err != nil {
		return nil, apperror.Persistence("list comments", err)
	}
	return comments, nil
}
