package models

import (
	"strings"
)

// BusinessCategory represents the kind of establishment a listing describes
type BusinessCategory string

const (
	BusinessCategoryRestaurant BusinessCategory = "Restaurant"
	BusinessCategoryCafe       BusinessCategory = "Cafe"
	BusinessCategoryBar        BusinessCategory = "Bar"
	BusinessCategoryHotel      BusinessCategory = "Hotel"
	BusinessCategoryShop       BusinessCategory = "Shop"
	BusinessCategoryService    BusinessCategory = "Service"
	BusinessCategoryOther      BusinessCategory = "Other"
)

// BusinessCategories lists every category in declaration order.
var BusinessCategories = []BusinessCategory{
	BusinessCategoryRestaurant,
	BusinessCategoryCafe,
	BusinessCategoryBar,
	BusinessCategoryHotel,
	BusinessCategoryShop,
	BusinessCategoryService,
	BusinessCategoryOther,
}

// ParseBusinessCategory matches s case-insensitively against the known categories.
func ParseBusinessCategory(s string) (BusinessCategory, bool) {
	s = strings.TrimSpace(s)
	for _, c := range BusinessCategories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// BusinessStatus represents the moderation state of a listing
type BusinessStatus string

const (
	BusinessStatusPending   BusinessStatus = "Pending"
	BusinessStatusApproved  BusinessStatus = "Approved"
	BusinessStatusRejected  BusinessStatus = "Rejected"
	BusinessStatusSuspended BusinessStatus = "Suspended"
)

// ParseBusinessStatus matches s case-insensitively against the known statuses.
func ParseBusinessStatus(s string) (BusinessStatus, bool) {
	for _, st := range []BusinessStatus{BusinessStatusPending, BusinessStatusApproved, BusinessStatusRejected, BusinessStatusSuspended} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// Business represents a directory listing.
// SuspensionReason is non-nil only while Status is Suspended, and
// Latitude/Longitude are either both set or both nil.
type Business struct {
	Base
	OwnerID          string           `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name             string           `gorm:"not null" json:"name"`
	Category         BusinessCategory `gorm:"not null;index" json:"category"`
	Address          string           `json:"address"`
	City             string           `gorm:"index" json:"city"`
	Description      string           `json:"description"`
	Phone            string           `json:"phone,omitempty"`
	Email            string           `json:"email,omitempty"`
	Website          string           `json:"website,omitempty"`
	Latitude         *float64         `json:"latitude,omitempty"`
	Longitude        *float64         `json:"longitude,omitempty"`
	Status           BusinessStatus   `gorm:"not null;default:'Pending';index" json:"status"`
	SuspensionReason *string          `json:"suspension_reason,omitempty"`
	OpenDays         uint8            `gorm:"not null;default:127" json:"open_days"`
	IsFeatured       bool             `gorm:"default:false" json:"is_featured"`
}

// HasCoordinates reports whether the listing carries a usable position.
// The (0,0) pair is treated as unset.
func (b *Business) HasCoordinates() bool {
	if b.Latitude == nil || b.Longitude == nil {
		return false
	}
	return !(*b.Latitude == 0 && *b.Longitude == 0)
}
