package domain

import (
	"net/mail"
	"time"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// MaxPasswordLength is a byte count: bcrypt refuses longer input.
const MaxPasswordLength = 72

// User represents an authenticated identity in the platform.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidateCredentials checks the shape of an email/password pair before it reaches storage.
func ValidateCredentials(email, password string) error {
	if email == "" {
		return Invalidf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Invalidf("email %q is not a valid address", email)
	}
	if len(password) < MinPasswordLength {
		return Invalidf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return Invalidf("password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}
