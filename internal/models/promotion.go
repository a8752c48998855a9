package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Promotion is a time-boxed offer attached to a business.
type Promotion struct {
	Base
	BusinessID      string    `gorm:"type:uuid;not null;index" json:"business_id"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `json:"description"`
	OriginalPrice   *float64  `json:"original_price,omitempty"`
	DiscountedPrice *float64  `json:"discounted_price,omitempty"`
	StartsAt        time.Time `gorm:"not null" json:"starts_at"`
	EndsAt          time.Time `gorm:"not null;index" json:"ends_at"`
	DiscountPercent *int      `gorm:"-" json:"discount_percent,omitempty"`
}

// AfterFind populates the derived discount percentage.
func (p *Promotion) AfterFind(tx *gorm.DB) error {
	p.DiscountPercent = ComputeDiscountPercent(p.OriginalPrice, p.DiscountedPrice)
	return nil
}

// ComputeDiscountPercent returns round((original-discounted)/original*100)
// clamped to [0,100]. It returns nil when either price is missing, the
// original price is not positive, or the discounted price exceeds it.
func ComputeDiscountPercent(original, discounted *float64) *int {
	if original == nil || discounted == nil {
		return nil
	}
	if *original <= 0 || *discounted > *original {
		return nil
	}
	pct := int(math.Round((*original - *discounted) / *original * 100))
	pct = max(0, min(100, pct))
	return &pct
}
