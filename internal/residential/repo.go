package residential

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
select r.id::text, r.client_name, r.builder_id::text, coalesce(b.name, ''), r.address,
       r.subdivision, r.lot_number, r.plan_name, r.status, r.board_position,
       r.assigned_to::text, to_char(r.due_date, 'YYYY-MM-DD'), r.created_at, r.updated_at
from residential_projects r
left join builders b on b.id = r.builder_id
`

func scan(row interface{ Scan(...any) error }, p *Project) error {
	var status string
	err := row.Scan(&p.ID, &p.ClientName, &p.BuilderID, &p.BuilderName, &p.Address,
		&p.Subdivision, &p.LotNumber, &p.PlanName, &status, &p.BoardPosition,
		&p.AssignedTo, &p.DueDate, &p.CreatedAt, &p.UpdatedAt)
	p.Status = board.Status(status)
	return err
}

func mapErr(err error) error {
	switch {
	case postgres.IsNoRows(err):
		return apperr.NotFound("residential project not found")
	case postgres.IsForeignKeyViolation(err):
		if strings.Contains(postgres.Constraint(err), "assigned_to") {
			return apperr.Wrap(apperr.ErrValidation, "assignee does not exist", err)
		}
		return apperr.Wrap(apperr.ErrValidation, "builder does not exist", err)
	case postgres.IsInvalidInput(err):
		return apperr.Wrap(apperr.ErrValidation, "invalid residential project", err)
	}
	return err
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Project, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list residential projects: %w", err)
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
where r.deleted_at is null
  and ($1 = '' or r.status = $1)
  and ($2::uuid is null or r.builder_id = $2::uuid)
  and ($3::uuid is null or r.assigned_to = $3::uuid)
  and ($4 = '' or r.client_name ilike '%' || $4 || '%' or r.address ilike '%' || $4 || '%' or r.subdivision ilike '%' || $4 || '%')
order by r.created_at desc
limit $5 offset $6;
`
	return r.list(ctx, q, string(f.Status), f.BuilderID, f.AssignedTo, f.Query, f.Page.Limit, f.Page.Offset)
}

func (r *Repo) Board(ctx context.Context) ([]Project, error) {
	return r.list(ctx, selectProject+`
where r.deleted_at is null
order by r.status, r.board_position, r.created_at;
`)
}

func (r *Repo) get(ctx context.Context, q postgres.Querier, id string) (*Project, error) {
	var p Project
	if err := scan(q.QueryRow(ctx, selectProject+`where r.id = $1::uuid and r.deleted_at is null;`, id), &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Project, error) {
	return r.get(ctx, r.db, id)
}

func (r *Repo) Create(ctx context.Context, in NewProject) (*Project, error) {
	if in.Status == "" {
		in.Status = board.StatusNew
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create residential project: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pos, err := board.NextPosition(ctx, tx, board.ResidentialProjects, in.Status)
	if err != nil {
		return nil, err
	}

	const q = `
insert into residential_projects
  (client_name, builder_id, address, subdivision, lot_number, plan_name, status, board_position, assigned_to, due_date)
values ($1, $2::uuid, $3, $4, $5, $6, $7, $8, $9::uuid, $10::date)
returning id::text;
`
	var id string
	err = tx.QueryRow(ctx, q, in.ClientName, in.BuilderID, in.Address, in.Subdivision, in.LotNumber, in.PlanName,
		string(in.Status), pos, in.AssignedTo, in.DueDate).Scan(&id)
	if err != nil {
		return nil, mapErr(err)
	}

	p, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create residential project: %w", err)
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, id string, p Patch) (*Project, error) {
	var u postgres.Update
	if p.ClientName != nil {
		u.Set("client_name", *p.ClientName)
	}
	u.SetOptional("builder_id", "uuid", p.BuilderID)
	if p.Address != nil {
		u.Set("address", *p.Address)
	}
	if p.Subdivision != nil {
		u.Set("subdivision", *p.Subdivision)
	}
	if p.LotNumber != nil {
		u.Set("lot_number", *p.LotNumber)
	}
	if p.PlanName != nil {
		u.Set("plan_name", *p.PlanName)
	}
	u.SetOptional("assigned_to", "uuid", p.AssignedTo)
	u.SetOptional("due_date", "date", p.DueDate)
	if u.Empty() {
		return r.Get(ctx, id)
	}

	q := `update residential_projects set ` + u.Clause() + ` where id = ` + u.Arg(id) + `::uuid and deleted_at is null returning id::text;`
	var updated string
	if err := r.db.QueryRow(ctx, q, u.Args()...).Scan(&updated); err != nil {
		return nil, mapErr(err)
	}
	return r.Get(ctx, updated)
}

func (r *Repo) Move(ctx context.Context, id string, status board.Status, pos *int) (*Project, error) {
	if _, err := board.Move(ctx, r.db, board.ResidentialProjects, id, status, pos); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("residential project not found")
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete residential project: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := board.Remove(ctx, tx, board.ResidentialProjects, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("residential project not found")
		}
		return mapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete residential project: %w", err)
	}
	return nil
}
