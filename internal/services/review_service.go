package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ReviewInput is the user-supplied part of a review.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"max=200"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// VoteAction is what a vote toggle did.
type VoteAction string

const (
	VoteAdded   VoteAction = "added"
	VoteUpdated VoteAction = "updated"
	VoteRemoved VoteAction = "removed"
)

// VoteResult is the outcome of a vote toggle.
type VoteResult struct {
	Action       VoteAction `json:"action"`
	HelpfulCount int64      `json:"helpful_count"`
}

// ProductReviews is the review listing of one product.
type ProductReviews struct {
	AverageRating float64         `json:"average_rating"`
	Count         int             `json:"count"`
	Reviews       []models.Review `json:"reviews"`
}

// ReviewService handles business logic related to reviews.
type ReviewService struct {
	store repositories.Store
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store repositories.Store) *ReviewService {
	return &ReviewService{store: store}
}

func duplicateReview(existing *models.Review) error {
	e := apperr.Conflict("you have already reviewed this product; edit your review instead")
	e.Ref = existing.ID
	return e
}

// CreateReview accepts a review only from a user who received the product,
// and only once per product.
func (s *ReviewService) CreateReview(ctx context.Context, userID, productID string, in ReviewInput) (*models.Review, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := ValidateStruct(&in); err != nil {
		return nil, err
	}

	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperr.NotFound("product")
	}

	existing, err := s.store.Reviews().GetByUserProduct(ctx, userID, product.ID)
	if err == nil {
		return nil, duplicateReview(existing)
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	bought, err := s.store.Orders().HasFulfilledItem(ctx, userID, product.SKU)
	if err != nil {
		return nil, err
	}
	if !bought {
		return nil, apperr.Policy("only customers who received this product can review it")
	}

	review := &models.Review{
		ProductID:  product.ID,
		UserID:     userID,
		Rating:     in.Rating,
		Title:      in.Title,
		Comment:    in.Comment,
		IsApproved: true,
	}
	if err := s.store.Reviews().Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, lookupErr := s.store.Reviews().GetByUserProduct(ctx, userID, product.ID); lookupErr == nil {
				return nil, duplicateReview(existing)
			}
		}
		return nil, err
	}
	return review, nil
}

// ownedReview hides other users' reviews behind not-found.
func (s *ReviewService) ownedReview(ctx context.Context, userID, reviewID string) (*models.Review, error) {
	review, err := s.store.Reviews().GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, apperr.NotFound("review")
	}
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID string, in ReviewInput) (*models.Review, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := ValidateStruct(&in); err != nil {
		return nil, err
	}

	review, err := s.ownedReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}
	review.Rating = in.Rating
	review.Title = in.Title
	review.Comment = in.Comment
	if err := s.store.Reviews().Update(ctx, review); err != nil {
		return nil, err
	}
	review.HelpfulCount, err = s.store.Reviews().HelpfulCount(ctx, review.ID)
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID string) error {
	if _, err := s.ownedReview(ctx, userID, reviewID); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		return tx.Reviews().Delete(ctx, reviewID)
	})
}

// ListReviews returns a product's approved reviews with their average rating.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) (*ProductReviews, error) {
	if _, err := s.store.Products().GetByID(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.store.Reviews().ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	avg, err := s.store.Reviews().AverageRating(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductReviews{AverageRating: avg, Count: len(reviews), Reviews: reviews}, nil
}

// Vote toggles the user's vote on a review: the same vote again removes it,
// the other vote replaces it. The helpful count is recounted afterwards.
func (s *ReviewService) Vote(ctx context.Context, userID, reviewID string, voteType models.VoteType) (*VoteResult, error) {
	if voteType != models.VoteHelpful && voteType != models.VoteNotHelpful {
		return nil, apperr.Validation("vote_type must be helpful or not_helpful", "vote_type")
	}
	if _, err := s.store.Reviews().GetByID(ctx, reviewID); err != nil {
		return nil, err
	}

	var action VoteAction
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		vote, err := tx.Reviews().GetVote(ctx, reviewID, userID)
		switch {
		case apperr.Is(err, apperr.KindNotFound):
			action = VoteAdded
			return tx.Reviews().CreateVote(ctx, &models.ReviewVote{
				ReviewID: reviewID,
				UserID:   userID,
				VoteType: voteType,
			})
		case err != nil:
			return err
		case vote.VoteType == voteType:
			action = VoteRemoved
			return tx.Reviews().DeleteVote(ctx, vote.ID)
		default:
			action = VoteUpdated
			vote.VoteType = voteType
			return tx.Reviews().UpdateVote(ctx, vote)
		}
	})
	if err != nil {
		return nil, err
	}

	count, err := s.store.Reviews().HelpfulCount(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return &VoteResult{Action: action, HelpfulCount: count}, nil
}
