package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bizdir/internal/models"
	"bizdir/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	RecordLogin(ctx context.Context, userID string) error
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
	ListUsers(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateUserRole(ctx context.Context, actorID, userID string, role models.UserRole) (*models.User, error)
}

// BusinessInput carries the owner-editable fields of a listing. Status is
// absent: only moderation changes it.
type BusinessInput struct {
	Name        string
	Category    models.BusinessCategory
	Address     string
	City        string
	Description string
	Phone       string
	Email       string
	Website     string
	Latitude    *float64
	Longitude   *float64
	OpenDays    *[7]bool
}

// ListFilter narrows the plain approved listing.
type ListFilter struct {
	Keyword  string
	City     string
	Category string
}

// BusinessServicer defines the contract for listing CRUD.
type BusinessServicer interface {
	CreateBusiness(ctx context.Context, ownerID string, input BusinessInput) (*models.Business, error)
	UpdateBusiness(ctx context.Context, ownerID, businessID string, input BusinessInput) (*models.Business, error)
	GetOwnerBusinesses(ctx context.Context, ownerID string) ([]models.Business, error)
	ListApproved(ctx context.Context, filter ListFilter) ([]models.Business, error)
	GetApprovedByID(ctx context.Context, id string) (*models.Business, error)
	ListByStatus(ctx context.Context, status *models.BusinessStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Business], error)
	ListCities(ctx context.Context) ([]string, error)
}

// ModerationServicer defines the admin state machine over listings.
type ModerationServicer interface {
	Approve(ctx context.Context, businessID string) (*models.Business, error)
	Reject(ctx context.Context, businessID string) (*models.Business, error)
	Suspend(ctx context.Context, businessID, actorID string, reason *string) (*models.Business, error)
	Delete(ctx context.Context, businessID, actorID string, reason *string) error
}

// SearchQuery is one search request. Zero values mean "not supplied".
type SearchQuery struct {
	UserID         string
	Keyword        string
	Categories     string
	Locations      string
	BBox           string
	HasCoordinates bool
	Lat            *float64
	Lng            *float64
	RadiusKm       *float64
	SortBy         string
	Page           int
	Limit          int
}

// PublicBusiness is the public projection of an approved listing.
type PublicBusiness struct {
	ID                  string                  `json:"id"`
	Name                string                  `json:"name"`
	Category            models.BusinessCategory `json:"category"`
	Address             string                  `json:"address"`
	City                string                  `json:"city"`
	Description         string                  `json:"description"`
	Phone               string                  `json:"phone,omitempty"`
	Email               string                  `json:"email,omitempty"`
	Website             string                  `json:"website,omitempty"`
	Latitude            *float64                `json:"latitude,omitempty"`
	Longitude           *float64                `json:"longitude,omitempty"`
	CoordinatesInferred bool                    `json:"coordinates_inferred,omitempty"`
	OpenDays            uint8                   `json:"open_days"`
	IsFeatured          bool                    `json:"is_featured"`
	AverageRating       float64                 `json:"average_rating"`
	DistanceKm          *float64                `json:"distance_km,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
}

// RecommendationQuery asks for suggested listings.
type RecommendationQuery struct {
	UserID   string
	Category string
	Location string
	Limit    int
}

// SearchServicer defines search and recommendations over approved listings.
type SearchServicer interface {
	Search(ctx context.Context, q SearchQuery) (*pagination.PageResponse[PublicBusiness], error)
	Recommendations(ctx context.Context, q RecommendationQuery) ([]models.Business, error)
}

// ReviewServicer defines the contract for reviews.
type ReviewServicer interface {
	CreateReview(ctx context.Context, userID, businessID string, rating int, text string) (*models.Review, error)
	ListReviews(ctx context.Context, businessID string, page pagination.PageRequest) (*pagination.PageResponse[models.Review], error)
	DeleteReview(ctx context.Context, actorID, reviewID string) error
}

// FavoriteServicer defines the contract for bookmarks.
type FavoriteServicer interface {
	ToggleFavorite(ctx context.Context, userID, businessID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]models.Business, error)
}

// PromotionInput carries the fields of a new promotion.
type PromotionInput struct {
	Title           string
	Description     string
	OriginalPrice   *float64
	DiscountedPrice *float64
	StartsAt        time.Time
	EndsAt          time.Time
}

// PromotionServicer defines the contract for promotions.
type PromotionServicer interface {
	CreatePromotion(ctx context.Context, ownerID, businessID string, input PromotionInput) (*models.Promotion, error)
	ListActive(ctx context.Context) ([]models.Promotion, error)
	DeletePromotion(ctx context.Context, actorID, promotionID string) error
}

// NewsletterServicer defines the contract for newsletter signups.
type NewsletterServicer interface {
	Subscribe(ctx context.Context, email string) (*models.NewsletterSubscription, error)
}

// AuditFilter holds optional filters for reading the audit log.
type AuditFilter struct {
	Action   string
	EntityID string
	ActorID  string
}

// AuditServicer appends to and reads the audit log. There is no update or
// delete: entries are immutable once written.
type AuditServicer interface {
	Record(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
