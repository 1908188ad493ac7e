package contacts

import (
	"time"

	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

// Contact is a person, optionally working for a builder.
type Contact struct {
	ID        string    `json:"id"`
	BuilderID *string   `json:"builder_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Title     string    `json:"title"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewContact struct {
	BuilderID *string
	FirstName string
	LastName  string
	Title     string
	Email     string
	Phone     string
}

// Patch leaves nil fields unchanged. An empty BuilderID unlinks the builder.
type Patch struct {
	BuilderID *string
	FirstName *string
	LastName  *string
	Title     *string
	Email     *string
	Phone     *string
}

type Filter struct {
	BuilderID *string
	Query     string
	Page      postgres.Page
}
