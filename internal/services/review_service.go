package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/models"
	"bizdir/internal/pagination"
)

// reviewService handles review business logic.
type reviewService struct {
	db *gorm.DB
}

// NewReviewService creates a new ReviewServicer.
func NewReviewService(db *gorm.DB) ReviewServicer {
	return &reviewService{db: db}
}

// CreateReview adds a review to an approved listing.
func (s *reviewService) CreateReview(ctx context.Context, userID, businessID string, rating int, text string) (*models.Review, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "rating must be between 1 and 5")
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := approvedQuery(db.Model(&models.Business{})).Where("id = ?", businessID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrBusinessNotFound
	}

	review := &models.Review{
		BusinessID: businessID,
		UserID:     userID,
		Rating:     rating,
		Text:       strings.TrimSpace(text),
	}
	if err := db.Create(review).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return review, nil
}

// ListReviews pages through a listing's reviews, newest first.
func (s *reviewService) ListReviews(ctx context.Context, businessID string, page pagination.PageRequest) (*pagination.PageResponse[models.Review], error) {
	page.Defaults()
	query := s.db.WithContext(ctx).Model(&models.Review{}).Where("business_id = ?", businessID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&reviews).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(reviews, page.Page, page.PageSize, total)
	return &resp, nil
}

// DeleteReview removes a review. Only its author or an administrator may.
func (s *reviewService) DeleteReview(ctx context.Context, actorID, reviewID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrReviewNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if review.UserID != actorID {
			if err := requireAdmin(tx, actorID); err != nil {
				if errors.Is(err, apperrors.ErrValidation) {
					return apperrors.ErrForbidden
				}
				return err
			}
		}

		if err := tx.Delete(&review).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
