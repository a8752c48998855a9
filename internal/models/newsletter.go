package models

// NewsletterSubscription records an email address subscribed to the newsletter
type NewsletterSubscription struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}
