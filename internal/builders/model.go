package builders

import (
	"time"

	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

// Builder is a construction company projects are delivered for.
type Builder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewBuilder struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Website string
}

type Patch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Website *string
}

// Filter narrows List. Query matches the name, case-insensitively.
type Filter struct {
	Query string
	Page  postgres.Page
}
