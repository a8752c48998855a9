package models

import "time"

// UserRole represents the role granted to a user
type UserRole string

const (
	UserRoleUser          UserRole = "User"
	UserRoleBusinessOwner UserRole = "BusinessOwner"
	UserRoleAdmin         UserRole = "Admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleBusinessOwner, UserRoleAdmin:
		return true
	}
	return false
}

// User represents the user model in the database
type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Role             UserRole   `gorm:"not null;default:'User'" json:"role"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin reports whether the user is an active administrator.
func (u *User) IsAdmin() bool {
	return u.IsActive && u.Role == UserRoleAdmin
}
