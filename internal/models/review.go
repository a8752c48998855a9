package models

// Review is a user's rating and comment on a business. Average ratings are
// computed at query time and never stored.
type Review struct {
	Base
	BusinessID string `gorm:"type:uuid;not null;index" json:"business_id"`
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	Rating     int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Text       string `json:"text"`
}

const (
	MinRating = 1
	MaxRating = 5
)
