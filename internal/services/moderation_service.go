package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bizdir/internal/cache"
	apperrors "bizdir/internal/errors"
	"bizdir/internal/logger"
	"bizdir/internal/metrics"
	"bizdir/internal/models"
)

// moderationService drives listings through Pending, Approved, Rejected and
// Suspended. Every transition reads the row, checks its guards and then
// writes with a conditional UPDATE on the status it read, all inside one
// transaction; a concurrent transition therefore surfaces as a conflict
// instead of being overwritten.
type moderationService struct {
	db    *gorm.DB
	audit AuditServicer
	cache *cache.Versioned
}

// NewModerationService creates a new ModerationServicer. cache may be nil.
func NewModerationService(db *gorm.DB, audit AuditServicer, c *cache.Versioned) ModerationServicer {
	return &moderationService{db: db, audit: audit, cache: c}
}

// transitionGuard inspects the current row and may veto the transition.
type transitionGuard func(tx *gorm.DB, business *models.Business) error

// transitionHook runs after the status write, inside the transaction.
type transitionHook func(tx *gorm.DB, before *models.Business) error

func (s *moderationService) transition(
	ctx context.Context,
	action string,
	businessID string,
	target models.BusinessStatus,
	reason *string,
	guard transitionGuard,
	after transitionHook,
) (*models.Business, error) {
	var result *models.Business
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		business, err := findBusiness(tx, businessID)
		if err != nil {
			return err
		}
		if err := guard(tx, business); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": target, "suspension_reason": nil}
		if reason != nil {
			updates["suspension_reason"] = *reason
		}

		res := tx.Model(&models.Business{}).
			Where("id = ? AND status = ?", business.ID, business.Status).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrBusinessStatusChanged
		}

		if after != nil {
			if err := after(tx, business); err != nil {
				return err
			}
		}

		result, err = findBusiness(tx, business.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, action, businessID)
	return result, nil
}

func (s *moderationService) committed(ctx context.Context, action, businessID string) {
	metrics.ModerationTransitions.WithLabelValues(action).Inc()
	s.cache.Bump(ctx, cache.FamilyCities)
	logger.Get().Infow("Business moderated", "action", action, "business_id", businessID)
}

// Approve publishes a listing. It fails only when the listing is already
// approved; leaving Suspended clears the suspension reason.
func (s *moderationService) Approve(ctx context.Context, businessID string) (*models.Business, error) {
	return s.transition(ctx, "approve", businessID, models.BusinessStatusApproved, nil,
		func(_ *gorm.DB, b *models.Business) error {
			if b.Status == models.BusinessStatusApproved {
				return apperrors.ErrBusinessAlreadyApproved
			}
			return nil
		}, nil)
}

// Reject turns a listing down. It fails only when the listing is already
// rejected.
func (s *moderationService) Reject(ctx context.Context, businessID string) (*models.Business, error) {
	return s.transition(ctx, "reject", businessID, models.BusinessStatusRejected, nil,
		func(_ *gorm.DB, b *models.Business) error {
			if b.Status == models.BusinessStatusRejected {
				return apperrors.ErrBusinessAlreadyRejected
			}
			return nil
		}, nil)
}

// Suspend takes an approved listing offline and records a
// BUSINESS_SUSPENDED audit entry in the same transaction. The actor's admin
// role is re-read from the users table; a stale token is not enough.
func (s *moderationService) Suspend(ctx context.Context, businessID, actorID string, reason *string) (*models.Business, error) {
	reason = normalizeReason(reason)

	return s.transition(ctx, "suspend", businessID, models.BusinessStatusSuspended, reason,
		func(tx *gorm.DB, b *models.Business) error {
			if b.Status == models.BusinessStatusSuspended {
				return apperrors.ErrBusinessAlreadySuspended
			}
			if b.Status != models.BusinessStatusApproved {
				return apperrors.WithMessage(apperrors.ErrValidation, "only approved businesses can be suspended")
			}
			return requireAdmin(tx, actorID)
		},
		func(tx *gorm.DB, before *models.Business) error {
			return s.audit.Record(ctx, tx, &models.AuditLog{
				ActorID:      actorID,
				Action:       models.AuditActionBusinessSuspended,
				EntityType:   models.AuditEntityBusiness,
				EntityID:     before.ID,
				TargetUserID: stringPtr(before.OwnerID),
				OldValue:     string(before.Status),
				NewValue:     string(models.BusinessStatusSuspended),
				Reason:       reason,
			})
		})
}

// Delete removes a listing together with its reviews, favorites and
// promotions, and records a BUSINESS_DELETED audit entry. Only the owner or
// an administrator may delete.
func (s *moderationService) Delete(ctx context.Context, businessID, actorID string, reason *string) error {
	reason = normalizeReason(reason)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		business, err := findBusiness(tx, businessID)
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

		for _, dependent := range []interface{}{&models.Review{}, &models.Favorite{}, &models.Promotion{}} {
			if err := tx.Unscoped().Where("business_id = ?", business.ID).Delete(dependent).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		res := tx.Unscoped().
			Where("id = ? AND status = ?", business.ID, business.Status).
			Delete(&models.Business{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrBusinessStatusChanged
		}

		return s.audit.Record(ctx, tx, &models.AuditLog{
			ActorID:      actorID,
			Action:       models.AuditActionBusinessDeleted,
			EntityType:   models.AuditEntityBusiness,
			EntityID:     business.ID,
			TargetUserID: stringPtr(business.OwnerID),
			OldValue:     string(business.Status),
			NewValue:     "Deleted",
			Reason:       reason,
		})
	})
	if err != nil {
		return err
	}

	s.committed(ctx, "delete", businessID)
	s.cache.Bump(ctx, cache.FamilyPromotions)
	return nil
}

// requireAdmin fails with a validation error unless actorID is an active
// administrator in the users table.
func requireAdmin(tx *gorm.DB, actorID string) error {
	actor, err := findUser(tx, actorID)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}
	if actor == nil || !actor.IsAdmin() {
		return apperrors.WithMessage(apperrors.ErrValidation, "actor is not an administrator")
	}
	return nil
}

func normalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
