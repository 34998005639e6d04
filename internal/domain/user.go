package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleStaff   UserRole = "STAFF"
	RoleAdmin   UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User is an identity record for the portal. Accounts are created by
// administrative tooling (cmd/seed or the registrar import) and are
// never deleted by the auth core.
type User struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	// LoginCode is the role-prefixed campus identifier (STU-00042,
	// STF-00001, ...). Either it or the email works as the login
	// identifier; both are matched exactly.
	LoginCode string `json:"login_code" gorm:"size:32;uniqueIndex;not null"`
	Email     string `json:"email" gorm:"size:255;uniqueIndex;not null"`

	PasswordHash string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"size:16;not null"`
	Name         string   `json:"name"`

	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`

	// At most one outstanding reset token per user; issuing a new one
	// overwrites these fields, consuming one clears them.
	ResetTokenHash      *string    `json:"-" gorm:"size:64;index"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
