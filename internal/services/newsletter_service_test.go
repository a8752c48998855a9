package services

import (
	"context"
	"testing"

	"bizdir/internal/models"
	"bizdir/internal/testutil"
)

func TestNewsletterService_Subscribe(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewNewsletterService(db)

	t.Run("idempotent_by_normalized_email", func(t *testing.T) {
		first, err := svc.Subscribe(ctx, "  Reader@Example.com ")
		testutil.AssertNoError(t, err)
		second, err := svc.Subscribe(ctx, "reader@example.com")
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Errorf("expected same subscription, got %s and %s", first.ID, second.ID)
		}
		var count int64
		db.Model(&models.NewsletterSubscription{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 row, got %d", count)
		}
	})

	t.Run("reactivates", func(t *testing.T) {
		sub, err := svc.Subscribe(ctx, "lapsed@example.com")
		testutil.AssertNoError(t, err)
		db.Model(sub).Update("is_active", false)

		_, err = svc.Subscribe(ctx, "lapsed@example.com")
		testutil.AssertNoError(t, err)

		var reloaded models.NewsletterSubscription
		db.First(&reloaded, "id = ?", sub.ID)
		if !reloaded.IsActive {
			t.Error("expected subscription reactivated")
		}
	})

	for _, email := range []string{"", "   ", "not-an-email"} {
		t.Run("invalid_"+email, func(t *testing.T) {
			_, err := svc.Subscribe(ctx, email)
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		})
	}
}
