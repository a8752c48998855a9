package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"bizdir/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Float returns a pointer to f, for optional coordinate and price fields.
func Float(f float64) *float64 {
	return &f
}

// CreateTestUser creates a regular user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.UserRoleUser)
}

// CreateTestAdmin creates an active administrator.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.UserRoleAdmin)
}

// CreateTestUserWithRole creates a user holding the given role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	user := newTestUser(t, email)
	user.Role = role
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := newTestUser(t, email)
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func newTestUser(t *testing.T, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &models.User{
		Email:    email,
		Password: string(hash),
		Role:     models.UserRoleUser,
		IsActive: true,
	}
}

// BusinessOption customizes a fixture business before it is inserted.
type BusinessOption func(*models.Business)

// WithStatus sets the moderation status.
func WithStatus(status models.BusinessStatus) BusinessOption {
	return func(b *models.Business) { b.Status = status }
}

// WithCategory sets the category.
func WithCategory(category models.BusinessCategory) BusinessOption {
	return func(b *models.Business) { b.Category = category }
}

// WithCity sets the city.
func WithCity(city string) BusinessOption {
	return func(b *models.Business) { b.City = city }
}

// WithCoordinates sets both coordinates.
func WithCoordinates(lat, lng float64) BusinessOption {
	return func(b *models.Business) {
		b.Latitude = Float(lat)
		b.Longitude = Float(lng)
	}
}

// WithName sets the name.
func WithName(name string) BusinessOption {
	return func(b *models.Business) { b.Name = name }
}

// WithDescription sets the description.
func WithDescription(description string) BusinessOption {
	return func(b *models.Business) { b.Description = description }
}

// WithCreatedAt backdates the listing, for recency ordering.
func WithCreatedAt(at time.Time) BusinessOption {
	return func(b *models.Business) { b.CreatedAt = at }
}

// CreateTestBusiness creates an Approved business in Prishtina without
// coordinates unless options say otherwise.
func CreateTestBusiness(t *testing.T, db *gorm.DB, ownerID string, opts ...BusinessOption) *models.Business {
	t.Helper()

	business := &models.Business{
		OwnerID:  ownerID,
		Name:     fmt.Sprintf("Test Business %d", nextID()),
		Category: models.BusinessCategoryRestaurant,
		Address:  "Rruga Nena Tereze",
		City:     "Prishtina",
		Status:   models.BusinessStatusApproved,
		OpenDays: models.OpenDaysAll,
	}
	for _, opt := range opts {
		opt(business)
	}
	if err := db.Create(business).Error; err != nil {
		t.Fatalf("failed to create test business: %v", err)
	}
	return business
}

// CreateTestReview creates a review with the given rating.
func CreateTestReview(t *testing.T, db *gorm.DB, businessID, userID string, rating int) *models.Review {
	t.Helper()

	review := &models.Review{
		BusinessID: businessID,
		UserID:     userID,
		Rating:     rating,
		Text:       fmt.Sprintf("Review %d", nextID()),
	}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("failed to create test review: %v", err)
	}
	return review
}

// CreateTestPromotion creates a promotion running from start to end.
func CreateTestPromotion(t *testing.T, db *gorm.DB, businessID string, start, end time.Time) *models.Promotion {
	t.Helper()

	promotion := &models.Promotion{
		BusinessID:      businessID,
		Title:           fmt.Sprintf("Promotion %d", nextID()),
		OriginalPrice:   Float(10),
		DiscountedPrice: Float(8),
		StartsAt:        start,
		EndsAt:          end,
	}
	if err := db.Create(promotion).Error; err != nil {
		t.Fatalf("failed to create test promotion: %v", err)
	}
	return promotion
}
