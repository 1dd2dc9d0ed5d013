// internal/domain/product/review_dto.go
package product

import (
	"github.com/your-org/fashion-store/internal/pkg/pagination"
)

// Review and comment request/response structures

// UpsertReviewRequest represents a customer's rating of a product
type UpsertReviewRequest struct {
	Rating  int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" form:"comment" binding:"max=2000"`
}

// ReviewSummary aggregates all reviews of a product. RatingBreakdown always
// holds the keys "1" through "5".
type ReviewSummary struct {
	ProductID       uint           `json:"product_id"`
	AverageRating   float64        `json:"average_rating"`
	TotalReviews    int            `json:"total_reviews"`
	RatingBreakdown map[string]int `json:"rating_breakdown"`
}

// ReviewView is a review with its author's display name
type ReviewView struct {
	ProductReview
	AuthorName string `json:"author_name"`
}

// ReviewListResponse is one page of a product's reviews plus the aggregate
type ReviewListResponse struct {
	Reviews    []ReviewView          `json:"reviews"`
	Summary    *ReviewSummary        `json:"summary"`
	Pagination pagination.Pagination `json:"pagination"`
}

// UpsertReviewResponse is returned after a review is written
type UpsertReviewResponse struct {
	Review  *ProductReview `json:"review"`
	Summary *ReviewSummary `json:"summary"`
}

// AddCommentRequest represents a new product comment
type AddCommentRequest struct {
	Content string `json:"content" form:"content" binding:"required,max=2000"`
}

// ReplyCommentRequest represents an admin reply
type ReplyCommentRequest struct {
	Reply string `json:"reply" form:"reply" binding:"required,max=2000"`
}

// CommentView is a comment with its author's display name
type CommentView struct {
	ProductComment
	AuthorName string `json:"author_name"`
}

// AdminCommentView adds the product name for the moderation queue
type AdminCommentView struct {
	CommentView
	ProductName string `json:"product_name"`
}

// CommentListRequest filters the admin moderation queue
type CommentListRequest struct {
	pagination.Params
	ProductID uint  `form:"product_id"`
	Visible   *bool `form:"visible"`
}

// CommentListResponse is one page of the moderation queue
type CommentListResponse struct {
	Comments   []AdminCommentView    `json:"comments"`
	Pagination pagination.Pagination `json:"pagination"`
}
