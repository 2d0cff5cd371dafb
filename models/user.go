package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the identity service
type User struct {
	gorm.Model

	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Account status
	Enabled       bool `gorm:"default:false" json:"enabled"`
	AccountLocked bool `gorm:"default:false" json:"account_locked"`
	IsAdmin       bool `gorm:"default:false" json:"is_admin"`

	Profile *UserProfile `json:"profile,omitempty"`
}

// FullName returns the display name used in outgoing emails.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserProfile is the 1:1 extension of User, created lazily on first access
type UserProfile struct {
	gorm.Model

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	Position        string `json:"position"`
	Department      string `json:"department"`
	PhoneNumber     string `json:"phone_number"`
	Timezone        string `gorm:"default:'UTC'" json:"timezone"`
	Skills          string `json:"skills"` // comma-separated
	ProfileImageURL string `json:"profile_image_url"`
	Bio             string `gorm:"type:text" json:"bio"`
}

// ActivationToken holds the emailed account-activation code
type ActivationToken struct {
	gorm.Model

	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Code        string     `gorm:"not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
}

// Expired reports whether the activation window has passed.
func (t *ActivationToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// PasswordResetToken is a single-use reset credential sent by email
type PasswordResetToken struct {
	gorm.Model

	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
}

// Usable reports whether the token can still redeem a password reset.
func (t *PasswordResetToken) Usable() bool {
	return !t.Used && time.Now().Before(t.ExpiresAt)
}
