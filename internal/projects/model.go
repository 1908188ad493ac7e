package projects

import (
	"time"

	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

// Project is a commercial job and its Kanban card. Dates are YYYY-MM-DD.
type Project struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	BuilderID     string       `json:"builder_id"`
	BuilderName   string       `json:"builder_name"`
	Address       string       `json:"address"`
	Description   string       `json:"description"`
	Status        board.Status `json:"status"`
	BoardPosition int          `json:"board_position"`
	AssignedTo    *string      `json:"assigned_to"`
	StartDate     *string      `json:"start_date"`
	DueDate       *string      `json:"due_date"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (p Project) CardStatus() board.Status { return p.Status }
func (p Project) CardPosition() int        { return p.BoardPosition }

type NewProject struct {
	Name        string
	BuilderID   string
	Address     string
	Description string
	Status      board.Status
	AssignedTo  *string
	StartDate   *string
	DueDate     *string
}

// Patch leaves nil fields unchanged. Empty AssignedTo, StartDate or DueDate
// clear the column.
type Patch struct {
	Name        *string
	BuilderID   *string
	Address     *string
	Description *string
	AssignedTo  *string
	StartDate   *string
	DueDate     *string
}

type Filter struct {
	Status     board.Status
	BuilderID  *string
	AssignedTo *string
	Query      string
	Page       postgres.Page
}
