package product

import (
	"github.com/your-org/fashion-store/internal/domain/user"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/logger"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"github.com/your-org/fashion-store/internal/pkg/testutil"
)

func (s *CatalogSuite) TestUpsertReviewReplacesPreviousRating() {
	first, err := s.reviews.UpsertReview(s.ctx, s.customer.ID, s.dress.ID, &UpsertReviewRequest{Rating: 2, Comment: "Too long"})
	s.Require().NoError(err)
	s.Equal(2, first.Review.Rating)

	second, err := s.reviews.UpsertReview(s.ctx, s.customer.ID, s.dress.ID, &UpsertReviewRequest{Rating: 5, Comment: " Tailored it, love it "})
	s.Require().NoError(err)
	s.Equal(first.Review.ID, second.Review.ID)
	s.Equal(5, second.Review.Rating)
	s.Equal("Tailored it, love it", second.Review.Comment)
	s.Equal(1, second.Summary.TotalReviews)
	s.Equal(5.0, second.Summary.AverageRating)

	var count int64
	s.Require().NoError(s.db.Model(&ProductReview{}).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *CatalogSuite) TestUpsertReviewValidation() {
	_, err := s.reviews.UpsertReview(s.ctx, s.customer.ID, s.dress.ID, &UpsertReviewRequest{Rating: 0})
	s.ErrorIs(err, apperror.ErrValidation)
	_, err = s.reviews.UpsertReview(s.ctx, s.customer.ID, s.dress.ID, &UpsertReviewRequest{Rating: 6})
	s.ErrorIs(err, apperror.ErrValidation)
	_, err = s.reviews.UpsertReview(s.ctx, s.customer.ID, 999, &UpsertReviewRequest{Rating: 3})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *CatalogSuite) TestReviewSummaryBreakdown() {
	empty, err := s.reviews.GetSummary(s.ctx, s.shirt.ID)
	s.Require().NoError(err)
	s.Equal(0, empty.TotalReviews)
	s.Equal(0.0, empty.AverageRating)
	s.Len(empty.RatingBreakdown, 5)

	ratings := []int{5, 4, 4}
	for i, rating := range ratings {
		u := user.User{Username: "reviewer" + string(rune('a'+i)), Email: string(rune('a'+i)) + "@example.com", Password: "x", IsActive: true}
		s.Require().NoError(s.db.Create(&u).Error)
		_, err := s.reviews.UpsertReview(s.ctx, u.ID, s.shirt.ID, &UpsertReviewRequest{Rating: rating})
		s.Require().NoError(err)
	}

	summary, err := s.reviews.GetSummary(s.ctx, s.shirt.ID)
	s.Require().NoError(err)
	s.Equal(3, summary.TotalReviews)
	s.Equal(4.33, summary.AverageRating)
	s.Equal(map[string]int{"1": 0, "2": 0, "3": 0, "4": 2, "5": 1}, summary.RatingBreakdown)

	page, err := s.reviews.GetReviews(s.ctx, s.shirt.ID, pagination.Params{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Len(page.Reviews, 2)
	s.Equal(int64(3), page.Pagination.Total)
	s.Equal(3, page.Summary.TotalReviews)

	_, err = s.reviews.GetReviews(s.ctx, 999, pagination.Params{})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *CatalogSuite) TestCommentModeration() {
	_, err := s.comments.AddComment(s.ctx, s.customer.ID, s.dress.ID, "   ")
	s.ErrorIs(err, apperror.ErrValidation)
	_, err = s.comments.AddComment(s.ctx, s.customer.ID, 999, "Hello")
	s.ErrorIs(err, apperror.ErrNotFound)

	comment, err := s.comments.AddComment(s.ctx, s.customer.ID, s.dress.ID, "Is it lined?")
	s.Require().NoError(err)
	s.True(comment.IsVisible)

	visible, err := s.comments.ToggleVisibility(s.ctx, comment.ID)
	s.Require().NoError(err)
	s.False(visible)

	public, err := s.comments.GetComments(s.ctx, s.dress.ID)
	s.Require().NoError(err)
	s.Empty(public)

	hidden := false
	queue, err := s.comments.AdminListComments(s.ctx, &CommentListRequest{Visible: &hidden})
	s.Require().NoError(err)
	s.Require().Len(queue.Comments, 1)
	s.Equal("Wrap Dress", queue.Comments[0].ProductName)
	s.Equal("Jane Doe", queue.Comments[0].AuthorName)

	replied, err := s.comments.ReplyComment(s.ctx, comment.ID, "Yes, fully lined.")
	s.Require().NoError(err)
	s.Equal("Yes, fully lined.", replied.AdminReply)
	s.NotNil(replied.ReplyDate)
	s.False(replied.IsVisible)

	visible, err = s.comments.ToggleVisibility(s.ctx, comment.ID)
	s.Require().NoError(err)
	s.True(visible)

	public, err = s.comments.GetComments(s.ctx, s.dress.ID)
	s.Require().NoError(err)
	s.Require().Len(public, 1)
	s.Equal("Yes, fully lined.", public[0].AdminReply)

	_, err = s.comments.ReplyComment(s.ctx, comment.ID, "")
	s.ErrorIs(err, apperror.ErrValidation)
	_, err = s.comments.ReplyComment(s.ctx, 999, "Hi")
	s.ErrorIs(err, apperror.ErrNotFound)
	_, err = s.comments.ToggleVisibility(s.ctx, 999)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *CatalogSuite) TestCommentsHeldForModeration() {
	cfg := testutil.Config()
	cfg.Store.CommentsAutoApprove = false
	moderated := NewCommentService(s.db, cfg, logger.Discard())

	comment, err := moderated.AddComment(s.ctx, s.customer.ID, s.shirt.ID, "Does it shrink?")
	s.Require().NoError(err)
	s.False(comment.IsVisible)

	public, err := moderated.GetComments(s.ctx, s.shirt.ID)
	s.Require().NoError(err)
	s.Empty(public)
}
