package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values carried on PlatformUser. Authorization decisions go through
// this claim, never through comparisons against a literal email/username.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// PlatformUser is a local snapshot of user data needed by the contest service.
// Owned and managed solely by this service.
// Populated via sync worker from the Profile Service's user table.
type PlatformUser struct {
	ID                string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID    string     `gorm:"uniqueIndex;not null" json:"external_user_id"` // The profile service's UUID
	Username          string     `gorm:"index;not null" json:"username"`
	Email             string     `json:"email,omitempty"`
	Role              string     `gorm:"type:varchar(16);default:'user';index" json:"role"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	LastSeen *time.Time `json:"last_seen,omitempty"`
	IsBanned bool       `json:"is_banned" gorm:"default:false"` // local contest ban

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
