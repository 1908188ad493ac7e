package positions

import (
	"context"
	"fmt"
	"time"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Position struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Patch struct {
	Name        *string
	Description *string
}

type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

const columns = `id::text, name, description, created_at, updated_at`

func scan(row interface{ Scan(...any) error }, p *Position) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
}

func mapErr(err error) error {
	switch {
	case postgres.IsNoRows(err):
		return apperr.NotFound("position not found")
	case postgres.IsUniqueViolation(err):
		return apperr.Wrap(apperr.ErrConflict, "position name already exists", err)
	}
	return err
}

func (r *Repo) List(ctx context.Context, page postgres.Page) ([]Position, error) {
	rows, err := r.db.Query(ctx, `
select `+columns+`
from positions
order by name
limit $1 offset $2;
`, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	out := make([]Position, 0, 16)
	for rows.Next() {
		var p Position
		if err := scan(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Position, error) {
	var p Position
	err := scan(r.db.QueryRow(ctx, `select `+columns+` from positions where id = $1::uuid;`, id), &p)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, name, description string) (*Position, error) {
	var p Position
	err := scan(r.db.QueryRow(ctx, `
insert into positions (name, description)
values ($1, $2)
returning `+columns+`;
`, name, description), &p)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *Repo) Update(ctx context.Context, id string, patch Patch) (*Position, error) {
	var u postgres.Update
	if patch.Name != nil {
		u.Set("name", *patch.Name)
	}
	if patch.Description != nil {
		u.Set("description", *patch.Description)
	}
	if u.Empty() {
		return r.Get(ctx, id)
	}

	q := `update positions set ` + u.Clause() + ` where id = ` + u.Arg(id) + `::uuid returning ` + columns + `;`
	var p Position
	if err := scan(r.db.QueryRow(ctx, q, u.Args()...), &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from positions where id = $1::uuid;`, id)
	if err != nil {
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("position not found")
	}
	return nil
}
