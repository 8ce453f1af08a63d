package model

import "time"

// Role enumerates the authorization roles stored on a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an identity record. Accounts start inactive and carry a
// confirmation token until the owner proves control of the email address.
// The refresh token pair and the password-reset token pair are always set
// and cleared together.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role   `json:"role" gorm:"size:50;not null;default:'user'"`
	IsActive     bool   `json:"is_active" gorm:"not null;default:false"`

	EmailConfirmationToken *string `json:"-" gorm:"size:64;index"`

	PasswordResetToken   *string    `json:"-" gorm:"size:64;index"`
	PasswordResetExpires *time.Time `json:"-"`

	RefreshToken        *string    `json:"-" gorm:"size:128;index"`
	RefreshTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pending reports whether the account still awaits email confirmation.
func (u *User) Pending() bool {
	return u.EmailConfirmationToken != nil
}
