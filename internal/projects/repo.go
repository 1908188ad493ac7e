package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

const selectProject = `
select p.id::text, p.name, p.builder_id::text, coalesce(b.name, ''), p.address, p.description,
       p.status, p.board_position, p.assigned_to::text,
       to_char(p.start_date, 'YYYY-MM-DD'), to_char(p.due_date, 'YYYY-MM-DD'),
       p.created_at, p.updated_at
from projects p
left join builders b on b.id = p.builder_id
`

func scan(row interface{ Scan(...any) error }, p *Project) error {
	var status string
	err := row.Scan(&p.ID, &p.Name, &p.BuilderID, &p.BuilderName, &p.Address, &p.Description,
		&status, &p.BoardPosition, &p.AssignedTo, &p.StartDate, &p.DueDate, &p.CreatedAt, &p.UpdatedAt)
	p.Status = board.Status(status)
	return err
}

func mapErr(err error) error {
	switch {
	case postgres.IsNoRows(err):
		return apperr.NotFound("project not found")
	case postgres.IsForeignKeyViolation(err):
		if strings.Contains(postgres.Constraint(err), "assigned_to") {
			return apperr.Wrap(apperr.ErrValidation, "assignee does not exist", err)
		}
		return apperr.Wrap(apperr.ErrValidation, "builder does not exist", err)
	case postgres.IsInvalidInput(err):
		return apperr.Wrap(apperr.ErrValidation, "invalid project", err)
	}
	return err
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Project, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]Project, 0, 32)
	for rows.Next() {
		var p Project
		if err := scan(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Project, error) {
	q := selectProject + `
where p.deleted_at is null
  and ($1 = '' or p.status = $1)
  and ($2::uuid is null or p.builder_id = $2::uuid)
  and ($3::uuid is null or p.assigned_to = $3::uuid)
  and ($4 = '' or p.name ilike '%' || $4 || '%' or p.address ilike '%' || $4 || '%')
order by p.created_at desc
limit $5 offset $6;
`
	return r.list(ctx, q, string(f.Status), f.BuilderID, f.AssignedTo, f.Query, f.Page.Limit, f.Page.Offset)
}

// Board returns every live project ordered for the Kanban view.
func (r *Repo) Board(ctx context.Context) ([]Project, error) {
	return r.list(ctx, selectProject+`
where p.deleted_at is null
order by p.status, p.board_position, p.created_at;
`)
}

func (r *Repo) get(ctx context.Context, q postgres.Querier, id string) (*Project, error) {
	var p Project
	if err := scan(q.QueryRow(ctx, selectProject+`where p.id = $1::uuid and p.deleted_at is null;`, id), &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Project, error) {
	return r.get(ctx, r.db, id)
}

// Create appends the card to the end of its status column.
func (r *Repo) Create(ctx context.Context, in NewProject) (*Project, error) {
	if in.Status == "" {
		in.Status = board.StatusNew
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create project: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pos, err := board.NextPosition(ctx, tx, board.Projects, in.Status)
	if err != nil {
		return nil, err
	}

	const q = `
insert into projects (name, builder_id, address, description, status, board_position, assigned_to, start_date, due_date)
values ($1, $2::uuid, $3, $4, $5, $6, $7::uuid, $8::date, $9::date)
returning id::text;
`
	var id string
	err = tx.QueryRow(ctx, q, in.Name, in.BuilderID, in.Address, in.Description, string(in.Status), pos,
		in.AssignedTo, in.StartDate, in.DueDate).Scan(&id)
	if err != nil {
		return nil, mapErr(err)
	}

	p, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create project: %w", err)
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, id string, p Patch) (*Project, error) {
	var u postgres.Update
	if p.Name != nil {
		u.Set("name", *p.Name)
	}
	if p.BuilderID != nil {
		u.SetCast("builder_id", "uuid", *p.BuilderID)
	}
	if p.Address != nil {
		u.Set("address", *p.Address)
	}
	if p.Description != nil {
		u.Set("description", *p.Description)
	}
	u.SetOptional("assigned_to", "uuid", p.AssignedTo)
	u.SetOptional("start_date", "date", p.StartDate)
	u.SetOptional("due_date", "date", p.DueDate)
	if u.Empty() {
		return r.Get(ctx, id)
	}

	q := `update projects set ` + u.Clause() + ` where id = ` + u.Arg(id) + `::uuid and deleted_at is null returning id::text;`
	var updated string
	if err := r.db.QueryRow(ctx, q, u.Args()...).Scan(&updated); err != nil {
		return nil, mapErr(err)
	}
	return r.Get(ctx, updated)
}

// Move changes the card's status and position on the board.
func (r *Repo) Move(ctx context.Context, id string, status board.Status, pos *int) (*Project, error) {
	if _, err := board.Move(ctx, r.db, board.Projects, id, status, pos); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete soft-deletes the project and closes the gap in its column.
func (r *Repo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete project: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := board.Remove(ctx, tx, board.Projects, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("project not found")
		}
		return mapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete project: %w", err)
	}
	return nil
}
