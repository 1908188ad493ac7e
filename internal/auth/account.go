package auth

import (
	"context"
	"time"
)

// Account is the slice of a user the auth endpoints work with.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         Role       `json:"role"`
	PositionID   *string    `json:"position_id,omitempty"`
	Active       bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	PasswordHash string     `json:"-"`
}

// NewAccount is a self sign-up request after validation.
type NewAccount struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
}

// AccountStore is implemented by the users repository.
type AccountStore interface {
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	AccountByID(ctx context.Context, id string) (*Account, error)
	CreateAccount(ctx context.Context, in NewAccount) (*Account, error)
	RecordLogin(ctx context.Context, id string) error
}
