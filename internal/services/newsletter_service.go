package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/models"
)

// newsletterService handles newsletter signups.
type newsletterService struct {
	db *gorm.DB
}

// NewNewsletterService creates a new NewsletterServicer.
func NewNewsletterService(db *gorm.DB) NewsletterServicer {
	return &newsletterService{db: db}
}

// Subscribe records email as subscribed. Subscribing twice returns the
// existing subscription, reactivating it if needed.
func (s *newsletterService) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a valid email is required")
	}

	var subscription models.NewsletterSubscription
	err := s.db.WithContext(ctx).
		Where(models.NewsletterSubscription{Email: email}).
		Attrs(models.NewsletterSubscription{IsActive: true}).
		FirstOrCreate(&subscription).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !subscription.IsActive {
		if err := s.db.WithContext(ctx).Model(&subscription).Update("is_active", true).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return &subscription, nil
}
