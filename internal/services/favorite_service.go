package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/models"
)

// favoriteService handles bookmarks.
type favoriteService struct {
	db *gorm.DB
}

// NewFavoriteService creates a new FavoriteServicer.
func NewFavoriteService(db *gorm.DB) FavoriteServicer {
	return &favoriteService{db: db}
}

// ToggleFavorite bookmarks an approved listing, or removes the bookmark if
// it exists. It reports whether the listing is bookmarked afterwards.
func (s *favoriteService) ToggleFavorite(ctx context.Context, userID, businessID string) (bool, error) {
	var favorited bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Favorite
		if err := tx.Where("user_id = ? AND business_id = ?", userID, businessID).Limit(1).Find(&existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(existing) > 0 {
			if err := tx.Unscoped().Delete(&existing[0]).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			favorited = false
			return nil
		}

		var count int64
		if err := approvedQuery(tx.Model(&models.Business{})).Where("id = ?", businessID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrBusinessNotFound
		}

		if err := tx.Create(&models.Favorite{UserID: userID, BusinessID: businessID}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		favorited = true
		return nil
	})
	return favorited, err
}

// ListFavorites returns the approved listings userID bookmarked, most
// recently bookmarked first.
func (s *favoriteService) ListFavorites(ctx context.Context, userID string) ([]models.Business, error) {
	businesses := []models.Business{}
	err := s.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.business_id = businesses.id").
		Where("favorites.user_id = ?", userID).
		Where("businesses.status = ?", models.BusinessStatusApproved).
		Order("favorites.created_at DESC").
		Find(&businesses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return businesses, nil
}
