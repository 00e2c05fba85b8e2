package model

import "time"

// Roles assignable to a user.
const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// User represents an authenticated user in the system.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         string    `json:"role" gorm:"size:50;default:'creator'"`
	Organization string    `json:"organization,omitempty" gorm:"size:255"`
	Introduction string    `json:"introduction,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
