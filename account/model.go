// Package account implements user registration, login, session management,
// and email verification on top of the auth building blocks.
package account

import (
	"time"

	"github.com/stackskills/platform/auth"
)

// User is a platform account. PasswordHash and the OTP fields never leave
// the package; Profile is the outward view.
type User struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	PasswordHash  string
	Role          auth.Role
	OTP           string
	OTPExpiry     time.Time
	EmailVerified bool
	CreatedAt     time.Time
}

// Profile is the client-visible projection of a User.
type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Role          auth.Role `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Profile returns the client-visible projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}
