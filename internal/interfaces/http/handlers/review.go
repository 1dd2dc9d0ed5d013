// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
)

// ReviewHandler handles review and comment HTTP requests
type ReviewHandler struct {
	reviewService  *product.ReviewService
	commentService *product.CommentService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *product.ReviewService, commentService *product.CommentService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:  reviewService,
		commentService: commentService,
	}
}

// UpsertReview handles POST /products/:id/reviews. A second review by the
// same customer replaces the first.
func (h *ReviewHandler) UpsertReview(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	var req product.UpsertReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.reviewService.UpsertReview(c.Request.Context(), principal.UserID, productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review saved successfully",
		"data":    response,
	})
}

// GetProductReviews handles GET /products/:id/reviews
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.reviewService.GetReviews(c.Request.Context(), productID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reviews retrieved successfully",
		"data":    response,
	})
}

// GetProductReviewSummary handles GET /products/:id/reviews/summary
func (h *ReviewHandler) GetProductReviewSummary(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	summary, err := h.reviewService.GetSummary(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review summary retrieved successfully",
		"data":    summary,
	})
}

// AddComment handles POST /products/:id/comments
func (h *ReviewHandler) AddComment(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	var req product.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), principal.UserID, productID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Comment posted successfully"
	if !comment.IsVisible {
		message = "Comment submitted for moderation"
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"data":    comment,
	})
}

// GetProductComments handles GET /products/:id/comments
func (h *ReviewHandler) GetProductComments(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	comments, err := h.commentService.GetComments(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comments retrieved successfully",
		"data":    comments,
	})
}

// Admin endpoints

// AdminGetComments handles GET /admin/comments
func (h *ReviewHandler) AdminGetComments(c *gin.Context) {
	var req product.CommentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.commentService.AdminListComments(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comments retrieved successfully",
		"data":    response,
	})
}

// AdminReplyComment handles POST /admin/comments/:id/reply
func (h *ReviewHandler) AdminReplyComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "comment")
	if !ok {
		return
	}

	var req product.ReplyCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.commentService.ReplyComment(c.Request.Context(), id, req.Reply)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reply saved successfully",
		"data":    comment,
	})
}

// AdminToggleComment handles PATCH /admin/comments/:id/visibility
func (h *ReviewHandler) AdminToggleComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "comment")
	if !ok {
		return
	}

	visible, err := h.commentService.ToggleVisibility(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment visibility updated",
		"data":    gin.H{"is_visible": visible},
	})
}
