package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-compass/internal/types"
)

// Sign-in providers.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Token purposes for auth_tokens.
const (
	TokenVerifyEmail   = "verify_email"
	TokenPasswordReset = "password_reset"
)

// Account is an accounts row including credential state.
type Account struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	PhotoURL       string     `json:"photo_url,omitempty"`
	PasswordHash   string     `json:"-"` // Never serialize to JSON
	Provider       string     `json:"provider"`
	Role           string     `json:"role"`
	Verified       bool       `json:"verified"`
	Disabled       bool       `json:"disabled"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AccountCreateInput holds the fields for a new account.
type AccountCreateInput struct {
	Email        string
	FullName     string
	PhotoURL     string
	PasswordHash string
	Provider     string
	Verified     bool
}

// IsLocked reports whether sign-in is blocked at now.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// HasPassword reports whether the account can sign in with a password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// Public converts the row to its API representation.
func (a *Account) Public() *types.Account {
	if a == nil {
		return nil
	}
	return &types.Account{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role,
		Provider:  a.Provider,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
	}
}

// LoginFailure is the state after a failed password attempt.
type LoginFailure struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

// Change is a catalog change notification.
type Change struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

// Catalog notification channels.
const (
	ChannelJobs    = "jobs_changed"
	ChannelCourses = "courses_changed"
)
