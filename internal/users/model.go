package users

import (
	"github.com/buildboard/buildboard-backend/internal/auth"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

// User is the account row. The password hash never leaves the server.
type User = auth.Account

type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         auth.Role
	PositionID   *string
}

// Patch leaves nil fields unchanged. An empty PositionID clears it.
type Patch struct {
	FirstName  *string
	LastName   *string
	Role       *auth.Role
	PositionID *string
	Active     *bool
}

type Filter struct {
	Query string
	Role  auth.Role
	Page  postgres.Page
}
