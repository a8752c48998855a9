package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"bizdir/internal/cache"
	"bizdir/internal/models"
	"bizdir/internal/testutil"
)

func newTestCache() *cache.Versioned {
	return cache.NewVersioned(cache.NewMemoryClient(), time.Minute, nil)
}

func newModerationService(db *gorm.DB) ModerationServicer {
	return NewModerationService(db, NewAuditService(db), newTestCache())
}

func auditEntries(t *testing.T, db *gorm.DB, action string) []models.AuditLog {
	t.Helper()
	var entries []models.AuditLog
	if err := db.Where("action = ?", action).Find(&entries).Error; err != nil {
		t.Fatalf("failed to load audit entries: %v", err)
	}
	return entries
}

func reloadBusiness(t *testing.T, db *gorm.DB, id string) *models.Business {
	t.Helper()
	var b models.Business
	if err := db.First(&b, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload business: %v", err)
	}
	return &b
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("pending_to_approved_without_audit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID, testutil.WithStatus(models.BusinessStatusPending))

		approved, err := svc.Approve(ctx, b.ID)
		testutil.AssertNoError(t, err)
		if approved.Status != models.BusinessStatusApproved {
			t.Errorf("expected Approved, got %s", approved.Status)
		}

		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no audit entries, got %d", count)
		}
	})

	t.Run("twice_conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID, testutil.WithStatus(models.BusinessStatusPending))

		_, err := svc.Approve(ctx, b.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.Approve(ctx, b.ID)
		testutil.AssertAppError(t, err, "BUSINESS_ALREADY_APPROVED")

		if got := reloadBusiness(t, db, b.ID).Status; got != models.BusinessStatusApproved {
			t.Errorf("expected status to stay Approved, got %s", got)
		}
	})

	t.Run("from_suspended_clears_reason", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		admin := testutil.CreateTestAdmin(t, db)
		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID)

		reason := "spam"
		_, err := svc.Suspend(ctx, b.ID, admin.ID, &reason)
		testutil.AssertNoError(t, err)

		approved, err := svc.Approve(ctx, b.ID)
		testutil.AssertNoError(t, err)
		if approved.SuspensionReason != nil {
			t.Errorf("expected suspension reason cleared, got %q", *approved.SuspensionReason)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		_, err := svc.Approve(ctx, "0190a6c8-0000-7000-8000-00000000dead")
		testutil.AssertAppError(t, err, "BUSINESS_NOT_FOUND")
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newModerationService(db)

	owner := testutil.CreateTestUser(t, db)
	b := testutil.CreateTestBusiness(t, db, owner.ID, testutil.WithStatus(models.BusinessStatusPending))

	rejected, err := svc.Reject(ctx, b.ID)
	testutil.AssertNoError(t, err)
	if rejected.Status != models.BusinessStatusRejected {
		t.Errorf("expected Rejected, got %s", rejected.Status)
	}

	_, err = svc.Reject(ctx, b.ID)
	testutil.AssertAppError(t, err, "BUSINESS_ALREADY_REJECTED")
}

func TestSuspend(t *testing.T) {
	ctx := context.Background()

	t.Run("approved_by_admin_writes_one_audit_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		admin := testutil.CreateTestAdmin(t, db)
		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID)

		reason := "  fake listing  "
		ctx := WithRequestMeta(ctx, RequestMeta{IPAddress: "192.0.2.1", UserAgent: "curl/8"})
		suspended, err := svc.Suspend(ctx, b.ID, admin.ID, &reason)
		testutil.AssertNoError(t, err)

		if suspended.Status != models.BusinessStatusSuspended {
			t.Errorf("expected Suspended, got %s", suspended.Status)
		}
		if suspended.SuspensionReason == nil || *suspended.SuspensionReason != "fake listing" {
			t.Errorf("expected trimmed reason, got %v", suspended.SuspensionReason)
		}

		entries := auditEntries(t, db, models.AuditActionBusinessSuspended)
		if len(entries) != 1 {
			t.Fatalf("expected exactly 1 audit entry, got %d", len(entries))
		}
		entry := entries[0]
		if entry.OldValue != "Approved" || entry.NewValue != "Suspended" {
			t.Errorf("unexpected values %s -> %s", entry.OldValue, entry.NewValue)
		}
		if entry.TargetUserID == nil || *entry.TargetUserID != owner.ID {
			t.Errorf("expected target owner %s, got %v", owner.ID, entry.TargetUserID)
		}
		if entry.ActorID != admin.ID || entry.EntityID != b.ID {
			t.Errorf("unexpected actor/entity %s/%s", entry.ActorID, entry.EntityID)
		}
		if entry.IPAddress != "192.0.2.1" || entry.UserAgent != "curl/8" {
			t.Errorf("expected request metadata on entry, got %q %q", entry.IPAddress, entry.UserAgent)
		}
	})

	t.Run("blank_reason_stored_as_null", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		admin := testutil.CreateTestAdmin(t, db)
		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID)

		blank := "   "
		suspended, err := svc.Suspend(ctx, b.ID, admin.ID, &blank)
		testutil.AssertNoError(t, err)
		if suspended.SuspensionReason != nil {
			t.Errorf("expected nil reason, got %q", *suspended.SuspensionReason)
		}
	})

	t.Run("pending_is_validation_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		admin := testutil.CreateTestAdmin(t, db)
		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID, testutil.WithStatus(models.BusinessStatusPending))

		_, err := svc.Suspend(ctx, b.ID, admin.ID, nil)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		if len(auditEntries(t, db, models.AuditActionBusinessSuspended)) != 0 {
			t.Error("expected no audit entry")
		}
	})

	t.Run("already_suspended_conflicts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		admin := testutil.CreateTestAdmin(t, db)
		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID)

		_, err := svc.Suspend(ctx, b.ID, admin.ID, nil)
		testutil.AssertNoError(t, err)

		_, err = svc.Suspend(ctx, b.ID, admin.ID, nil)
		testutil.AssertAppError(t, err, "BUSINESS_ALREADY_SUSPENDED")

		if n := len(auditEntries(t, db, models.AuditActionBusinessSuspended)); n != 1 {
			t.Errorf("expected 1 audit entry, got %d", n)
		}
	})

	t.Run("non_admin_actor_is_validation_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		actor := testutil.CreateTestUserWithRole(t, db, models.UserRoleBusinessOwner)
		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID)

		_, err := svc.Suspend(ctx, b.ID, actor.ID, nil)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		if got := reloadBusiness(t, db, b.ID).Status; got != models.BusinessStatusApproved {
			t.Errorf("expected status unchanged, got %s", got)
		}
	})

	t.Run("not_found_checked_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		_, err := svc.Suspend(ctx, "0190a6c8-0000-7000-8000-00000000dead", "nobody", nil)
		testutil.AssertAppError(t, err, "BUSINESS_NOT_FOUND")
	})

	t.Run("audit_failure_rolls_back_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		admin := testutil.CreateTestAdmin(t, db)
		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID)

		if err := db.Migrator().DropTable(&models.AuditLog{}); err != nil {
			t.Fatalf("failed to drop audit table: %v", err)
		}

		_, err := svc.Suspend(ctx, b.ID, admin.ID, nil)
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		if got := reloadBusiness(t, db, b.ID).Status; got != models.BusinessStatusApproved {
			t.Errorf("expected rollback to Approved, got %s", got)
		}
	})
}

func TestTransitionDetectsConcurrentChange(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	owner := testutil.CreateTestUser(t, db)
	b := testutil.CreateTestBusiness(t, db, owner.ID, testutil.WithStatus(models.BusinessStatusPending))

	svc := &moderationService{db: db, audit: NewAuditService(db), cache: newTestCache()}

	// The guard runs after the row is read; flipping the status from inside it
	// simulates another transition committing in between.
	_, err := svc.transition(ctx, "approve", b.ID, models.BusinessStatusApproved, nil,
		func(tx *gorm.DB, current *models.Business) error {
			return tx.Model(&models.Business{}).Where("id = ?", current.ID).
				Update("status", models.BusinessStatusRejected).Error
		}, nil)
	testutil.AssertAppError(t, err, "BUSINESS_STATUS_CHANGED")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin_cascades_and_audits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		admin := testutil.CreateTestAdmin(t, db)
		owner := testutil.CreateTestUser(t, db)
		reviewer := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID)
		other := testutil.CreateTestBusiness(t, db, owner.ID)

		testutil.CreateTestReview(t, db, b.ID, reviewer.ID, 5)
		testutil.CreateTestReview(t, db, other.ID, reviewer.ID, 3)
		db.Create(&models.Favorite{UserID: reviewer.ID, BusinessID: b.ID})
		now := time.Now()
		testutil.CreateTestPromotion(t, db, b.ID, now, now.Add(time.Hour))

		reason := "closed permanently"
		testutil.AssertNoError(t, svc.Delete(ctx, b.ID, admin.ID, &reason))

		var count int64
		db.Unscoped().Model(&models.Business{}).Where("id = ?", b.ID).Count(&count)
		if count != 0 {
			t.Error("expected business row removed")
		}
		for name, model := range map[string]interface{}{
			"reviews":    &models.Review{},
			"favorites":  &models.Favorite{},
			"promotions": &models.Promotion{},
		} {
			db.Unscoped().Model(model).Where("business_id = ?", b.ID).Count(&count)
			if count != 0 {
				t.Errorf("expected %s removed, got %d", name, count)
			}
		}
		db.Model(&models.Review{}).Where("business_id = ?", other.ID).Count(&count)
		if count != 1 {
			t.Error("expected other business's reviews untouched")
		}

		entries := auditEntries(t, db, models.AuditActionBusinessDeleted)
		if len(entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(entries))
		}
		if entries[0].Reason == nil || *entries[0].Reason != reason {
			t.Errorf("expected reason %q, got %v", reason, entries[0].Reason)
		}
	})

	t.Run("owner_may_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		owner := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID, testutil.WithStatus(models.BusinessStatusPending))

		testutil.AssertNoError(t, svc.Delete(ctx, b.ID, owner.ID, nil))
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestBusiness(t, db, owner.ID)

		err := svc.Delete(ctx, b.ID, stranger.ID, nil)
		testutil.AssertAppError(t, err, "FORBIDDEN")

		reloadBusiness(t, db, b.ID)
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newModerationService(db)

		err := svc.Delete(ctx, "0190a6c8-0000-7000-8000-00000000dead", "anyone", nil)
		testutil.AssertAppError(t, err, "BUSINESS_NOT_FOUND")
	})
}
