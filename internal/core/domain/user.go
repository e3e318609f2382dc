package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidResetToken = errors.New("invalid or expired token")
var ErrResetThrottled = errors.New("reset already requested recently")

// User models an account known to the identity service. ResetToken and
// ResetTokenExpiry are either both set (a reset is pending) or both nil;
// every write touching one must touch the other in the same update.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ValidRole reports whether role belongs to the closed role enumeration.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
