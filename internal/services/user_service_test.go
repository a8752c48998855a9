package services

import (
	"context"
	"testing"

	"bizdir/internal/models"
	"bizdir/internal/pagination"
	"bizdir/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		user, err := svc.CreateUser(ctx, "alice@example.com", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID")
		}
		if user.Role != models.UserRoleUser {
			t.Errorf("expected role User, got %s", user.Role)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		_, err := svc.CreateUser(ctx, "dup@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser(ctx, "DUP@example.com", "password456", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		_, err := svc.CreateUser(ctx, "test@example.com", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("email_normalized_to_lowercase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		user, err := svc.CreateUser(ctx, " Alice@EXAMPLE.COM ", "password123", "", "")
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, NewAuditService(db))

	created := testutil.CreateTestUserWithEmail(t, db, "found@example.com")

	t.Run("by_email", func(t *testing.T) {
		user, err := svc.GetUserByEmail(ctx, "Found@example.com")
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user ID %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("by_id", func(t *testing.T) {
		user, err := svc.GetUserByID(ctx, created.ID)
		testutil.AssertNoError(t, err)
		if user.Email != created.Email {
			t.Errorf("expected email %s, got %s", created.Email, user.Email)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetUserByID(ctx, "0190a6c8-0000-7000-8000-00000000dead")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("inactive_user_hidden_from_login", func(t *testing.T) {
		inactive := testutil.CreateTestUserWithEmail(t, db, "inactive@example.com")
		db.Model(inactive).Update("is_active", false)

		_, err := svc.GetUserByEmail(ctx, "inactive@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestVerifyPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, NewAuditService(db))

	// Fixture uses "password123" with bcrypt.MinCost
	user := testutil.CreateTestUser(t, db)
	if !svc.VerifyPassword(user, "password123") {
		t.Error("expected password verification to succeed")
	}
	if svc.VerifyPassword(user, "wrongpassword") {
		t.Error("expected password verification to fail")
	}
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, NewAuditService(db))

	user := testutil.CreateTestUser(t, db)

	hash := "abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"
	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(ctx, user.ID, hash))

	got, err := svc.GetRefreshTokenHash(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if got != hash {
		t.Errorf("expected hash %s, got %s", hash, got)
	}

	err = svc.StoreRefreshTokenHash(ctx, "0190a6c8-0000-7000-8000-00000000dead", hash)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestRecordLogin(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, NewAuditService(db))

	user := testutil.CreateTestUser(t, db)
	testutil.AssertNoError(t, svc.RecordLogin(ctx, user.ID))

	reloaded, err := svc.GetUserByID(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if reloaded.LastLoginAt == nil {
		t.Error("expected LastLoginAt to be set")
	}
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, NewAuditService(db))

	for i := 0; i < 3; i++ {
		testutil.CreateTestUser(t, db)
	}

	page, err := svc.ListUsers(ctx, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 3 {
		t.Errorf("expected 3 users, got %d", page.TotalItems)
	}
	if len(page.Data) != 2 {
		t.Errorf("expected page of 2, got %d", len(page.Data))
	}
}

func TestUpdateUserRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admin_changes_role_and_audits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)

		ctx := WithRequestMeta(ctx, RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"})
		updated, err := svc.UpdateUserRole(ctx, admin.ID, user.ID, models.UserRoleBusinessOwner)
		testutil.AssertNoError(t, err)
		if updated.Role != models.UserRoleBusinessOwner {
			t.Errorf("expected BusinessOwner, got %s", updated.Role)
		}

		var entries []models.AuditLog
		db.Where("action = ?", models.AuditActionUserRoleUpdated).Find(&entries)
		if len(entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(entries))
		}
		entry := entries[0]
		if entry.OldValue != "User" || entry.NewValue != "BusinessOwner" {
			t.Errorf("unexpected values %s -> %s", entry.OldValue, entry.NewValue)
		}
		if entry.ActorID != admin.ID || entry.EntityID != user.ID {
			t.Errorf("unexpected actor/entity %s/%s", entry.ActorID, entry.EntityID)
		}
		if entry.IPAddress != "10.0.0.1" || entry.UserAgent != "test-agent" {
			t.Errorf("expected request metadata, got %q %q", entry.IPAddress, entry.UserAgent)
		}
	})

	t.Run("same_role_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateUserRole(ctx, admin.ID, user.ID, models.UserRoleUser)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no audit entries, got %d", count)
		}
	})

	t.Run("non_admin_actor_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		actor := testutil.CreateTestUser(t, db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateUserRole(ctx, actor.ID, user.ID, models.UserRoleAdmin)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("demoted_admin_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)
		db.Model(admin).Update("is_active", false)

		_, err := svc.UpdateUserRole(ctx, admin.ID, user.ID, models.UserRoleAdmin)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		admin := testutil.CreateTestAdmin(t, db)
		_, err := svc.UpdateUserRole(ctx, admin.ID, "0190a6c8-0000-7000-8000-00000000dead", models.UserRoleAdmin)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("invalid_role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, NewAuditService(db))

		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)
		_, err := svc.UpdateUserRole(ctx, admin.ID, user.ID, models.UserRole("Root"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
