package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bizdir/internal/cache"
	"bizdir/internal/clock"
	apperrors "bizdir/internal/errors"
	"bizdir/internal/models"
)

// promotionService handles promotions attached to listings.
type promotionService struct {
	db    *gorm.DB
	cache *cache.Versioned
	clock clock.Clock
}

// NewPromotionService creates a new PromotionServicer. cache may be nil.
func NewPromotionService(db *gorm.DB, c *cache.Versioned, clk clock.Clock) PromotionServicer {
	if clk == nil {
		clk = clock.System()
	}
	return &promotionService{db: db, cache: c, clock: clk}
}

func validatePromotion(input PromotionInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "title is required")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return apperrors.WithMessage(apperrors.ErrValidation, "promotion must end after it starts")
	}
	if (input.OriginalPrice != nil && *input.OriginalPrice < 0) ||
		(input.DiscountedPrice != nil && *input.DiscountedPrice < 0) {
		return apperrors.WithMessage(apperrors.ErrValidation, "prices must not be negative")
	}
	if input.OriginalPrice != nil && input.DiscountedPrice != nil && *input.DiscountedPrice > *input.OriginalPrice {
		return apperrors.WithMessage(apperrors.ErrValidation, "discounted price must not exceed the original price")
	}
	return nil
}

// CreatePromotion attaches a promotion to one of the owner's listings.
func (s *promotionService) CreatePromotion(ctx context.Context, ownerID, businessID string, input PromotionInput) (*models.Promotion, error) {
	db := s.db.WithContext(ctx)

	business, err := findBusiness(db, businessID)
	if err != nil {
		return nil, err
	}
	if business.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	if err := validatePromotion(input); err != nil {
		return nil, err
	}

	promotion := &models.Promotion{
		BusinessID:      business.ID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		OriginalPrice:   input.OriginalPrice,
		DiscountedPrice: input.DiscountedPrice,
		StartsAt:        input.StartsAt.UTC(),
		EndsAt:          input.EndsAt.UTC(),
	}
	if err := db.Create(promotion).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	promotion.DiscountPercent = models.ComputeDiscountPercent(promotion.OriginalPrice, promotion.DiscountedPrice)

	s.cache.Bump(ctx, cache.FamilyPromotions)
	return promotion, nil
}

// ListActive returns running promotions of approved listings, soonest
// ending first.
func (s *promotionService) ListActive(ctx context.Context) ([]models.Promotion, error) {
	return cache.Remember(ctx, s.cache, cache.FamilyPromotions, "active", func() ([]models.Promotion, error) {
		now := s.clock.Now()
		promotions := []models.Promotion{}
		err := s.db.WithContext(ctx).
			Joins("JOIN businesses ON businesses.id = promotions.business_id").
			Where("businesses.status = ? AND businesses.deleted_at IS NULL", models.BusinessStatusApproved).
			Where("promotions.starts_at <= ? AND promotions.ends_at > ?", now, now).
			Order("promotions.ends_at ASC").
			Find(&promotions).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return promotions, nil
	})
}

// DeletePromotion removes a promotion. Only the listing owner or an
// administrator may.
func (s *promotionService) DeletePromotion(ctx context.Context, actorID, promotionID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var promotion models.Promotion
		if err := tx.First(&promotion, "id = ?", promotionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPromotionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		business, err := findBusiness(tx, promotion.BusinessID)
		if err != nil {
			return err
		}
		if business.OwnerID != actorID {
			if err := requireAdmin(tx, actorID); err != nil {
				if errors.Is(err, apperrors.ErrValidation) {
					return apperrors.ErrForbidden
				}
				return err
			}
		}

		if err := tx.Delete(&promotion).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Bump(ctx, cache.FamilyPromotions)
	return nil
}
