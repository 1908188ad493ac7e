package residential

import (
	"time"

	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

// Project is a residential job (one house on one lot) and its Kanban card.
type Project struct {
	ID            string       `json:"id"`
	ClientName    string       `json:"client_name"`
	BuilderID     *string      `json:"builder_id"`
	BuilderName   string       `json:"builder_name"`
	Address       string       `json:"address"`
	Subdivision   string       `json:"subdivision"`
	LotNumber     string       `json:"lot_number"`
	PlanName      string       `json:"plan_name"`
	Status        board.Status `json:"status"`
	BoardPosition int          `json:"board_position"`
	AssignedTo    *string      `json:"assigned_to"`
	DueDate       *string      `json:"due_date"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (p Project) CardStatus() board.Status { return p.Status }
func (p Project) CardPosition() int        { return p.BoardPosition }

type NewProject struct {
	ClientName  string
	BuilderID   *string
	Address     string
	Subdivision string
	LotNumber   string
	PlanName    string
	Status      board.Status
	AssignedTo  *string
	DueDate     *string
}

// Patch leaves nil fields unchanged. Empty BuilderID, AssignedTo or DueDate
// clear the column.
type Patch struct {
	ClientName  *string
	BuilderID   *string
	Address     *string
	Subdivision *string
	LotNumber   *string
	PlanName    *string
	AssignedTo  *string
	DueDate     *string
}

type Filter struct {
	Status     board.Status
	BuilderID  *string
	AssignedTo *string
	Query      string
	Page       postgres.Page
}
