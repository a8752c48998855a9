package models

// Favorite links a user to a business they bookmarked.
type Favorite struct {
	Base
	UserID     string `gorm:"type:uuid;not null;uniqueIndex:uq_favorites_user_business" json:"user_id"`
	BusinessID string `gorm:"type:uuid;not null;uniqueIndex:uq_favorites_user_business" json:"business_id"`
}
