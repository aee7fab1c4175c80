package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// ReviewRepository defines the interface for review and vote data access.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	GetByUserProduct(ctx context.Context, userID, productID string) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
	// ListByProduct returns approved reviews, newest first, with HelpfulCount filled in.
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	AverageRating(ctx context.Context, productID string) (float64, error)
	HelpfulCount(ctx context.Context, reviewID string) (int64, error)

	GetVote(ctx context.Context, reviewID, userID string) (*models.ReviewVote, error)
	CreateVote(ctx context.Context, vote *models.ReviewVote) error
	UpdateVote(ctx context.Context, vote *models.ReviewVote) error
	DeleteVote(ctx context.Context, id string) error
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *GORMReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "review")
	}
	return &review, nil
}

func (r *GORMReviewRepository) GetByUserProduct(ctx context.Context, userID, productID string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).First(&review, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		return nil, lookupErr(err, "review")
	}
	return &review, nil
}

func (r *GORMReviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"rating":  review.Rating,
			"title":   review.Title,
			"comment": review.Comment,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

// Delete removes the review and its votes.
func (r *GORMReviewRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("review_id = ?", id).Delete(&models.ReviewVote{}).Error; err != nil {
		return fmt.Errorf("failed to delete review votes: %w", err)
	}
	res := db.Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("review")
	}
	return nil
}

func (r *GORMReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "first_name", "last_name")
		}).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if len(reviews) == 0 {
		return reviews, nil
	}

	ids := make([]string, len(reviews))
	for i := range reviews {
		ids[i] = reviews[i].ID
	}
	var counts []struct {
		ReviewID string
		N        int64
	}
	err = r.db.WithContext(ctx).Model(&models.ReviewVote{}).
		Select("review_id, count(*) as n").
		Where("review_id IN ? AND vote_type = ?", ids, models.VoteHelpful).
		Group("review_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count helpful votes: %w", err)
	}
	byReview := make(map[string]int64, len(counts))
	for _, c := range counts {
		byReview[c.ReviewID] = c.N
	}
	for i := range reviews {
		reviews[i].HelpfulCount = byReview[reviews[i].ID]
	}
	return reviews, nil
}

func (r *GORMReviewRepository) AverageRating(ctx context.Context, productID string) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("avg(rating)").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Row().Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg.Float64, nil
}

func (r *GORMReviewRepository) HelpfulCount(ctx context.Context, reviewID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReviewVote{}).
		Where("review_id = ? AND vote_type = ?", reviewID, models.VoteHelpful).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count helpful votes: %w", err)
	}
	return count, nil
}

func (r *GORMReviewRepository) GetVote(ctx context.Context, reviewID, userID string) (*models.ReviewVote, error) {
	var vote models.ReviewVote
	err := r.db.WithContext(ctx).First(&vote, "review_id = ? AND user_id = ?", reviewID, userID).Error
	if err != nil {
		return nil, lookupErr(err, "vote")
	}
	return &vote, nil
}

func (r *GORMReviewRepository) CreateVote(ctx context.Context, vote *models.ReviewVote) error {
	if err := r.db.WithContext(ctx).Create(vote).Error; err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

func (r *GORMReviewRepository) UpdateVote(ctx context.Context, vote *models.ReviewVote) error {
	err := r.db.WithContext(ctx).Model(&models.ReviewVote{}).
		Where("id = ?", vote.ID).
		Update("vote_type", vote.VoteType).Error
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	return nil
}

func (r *GORMReviewRepository) DeleteVote(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.ReviewVote{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}
