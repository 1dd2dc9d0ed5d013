// internal/domain/product/review_service.go
package product

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewService handles product ratings
type ReviewService struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// UpsertReview records the customer's rating of a product. A second call for
// the same product replaces the rating and comment and refreshes the timestamp.
func (s *ReviewService) UpsertReview(ctx context.Context, userID, productID uint, req *UpsertReviewRequest) (*UpsertReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperror.Validation("rating must be between 1 and 5")
	}

	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &Product{}, productID, "product"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := strings.TrimSpace(req.Comment)

	review := &ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rating":     req.Rating,
			"comment":    comment,
			"created_at": now,
			"updated_at": now,
		}),
	}).Create(review).Error
	if err != nil {
		return nil, apperror.FromDB(err, "review", "save review")
	}

	// The upsert may not report the id of an updated row, so reload by key.
	var saved ProductReview
	if err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&saved).Error; err != nil {
		return nil, apperror.FromDB(err, "review", "load review")
	}

	summary, err := summarizeReviews(db, productID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"review_id":  saved.ID,
		"product_id": productID,
		"user_id":    userID,
		"rating":     req.Rating,
	}).Info("Review saved")

	return &UpsertReviewResponse{Review: &saved, Summary: summary}, nil
}

// GetReviews returns a page of a product's reviews, newest first, with the
// aggregate over all of them.
func (s *ReviewService) GetReviews(ctx context.Context, productID uint, params pagination.Params) (*ReviewListResponse, error) {
	params.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)

	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &Product{}, productID, "product"); err != nil {
		return nil, err
	}

	summary, err := summarizeReviews(db, productID)
	if err != nil {
		return nil, err
	}

	var reviews []ReviewView
	err = db.Model(&ProductReview{}).
		Select("product_reviews.*, COALESCE(NULLIF(users.full_name, ''), users.username) AS author_name").
		Joins("LEFT JOIN users ON users.id = product_reviews.user_id").
		Where("product_reviews.product_id = ?", productID).
		Order("product_reviews.created_at DESC, product_reviews.id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Scan(&reviews).Error
	if err != nil {
		return nil, apperror.Persistence("list reviews", err)
	}

	return &ReviewListResponse{
		Reviews:    reviews,
		Summary:    summary,
		Pagination: pagination.New(params, int64(summary.TotalReviews)),
	}, nil
}

// GetSummary returns the rating aggregate of a product
func (s *ReviewService) GetSummary(ctx context.Context, productID uint) (*ReviewSummary, error) {
	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &Product{}, productID, "product"); err != nil {
		return nil, err
	}
	return summarizeReviews(db, productID)
}

// summarizeReviews computes the average and the 1 to 5 histogram in one pass
func summarizeReviews(db *gorm.DB, productID uint) (*ReviewSummary, error) {
	var rows []struct {
		Rating int
		Count  int
	}
	err := db.Model(&ProductReview{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Persistence("summarize reviews", err)
	}

	summary := &ReviewSummary{
		ProductID:       productID,
		RatingBreakdown: make(map[string]int, 5),
	}
	for star := 1; star <= 5; star++ {
		summary.RatingBreakdown[strconv.Itoa(star)] = 0
	}

	sum := 0
	for _, row := range rows {
		summary.RatingBreakdown[strconv.Itoa(row.Rating)] = row.Count
		summary.TotalReviews += row.Count
		sum += row.Rating * row.Count
	}

	if summary.TotalReviews > 0 {
		avg := float64(sum) / float64(summary.TotalReviews)
		summary.AverageRating = math.Round(avg*100) / 100
	}

	return summary, nil
}
