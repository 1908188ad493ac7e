package builders

import (
	"context"
	"fmt"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

const columns = `id::text, name, email, phone, address, website, created_at, updated_at`

func scan(row interface{ Scan(...any) error }, b *Builder) error {
	return row.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.Address, &b.Website, &b.CreatedAt, &b.UpdatedAt)
}

func mapErr(err error) error {
	switch {
	case postgres.IsNoRows(err):
		return apperr.NotFound("builder not found")
	case postgres.IsUniqueViolation(err):
		return apperr.Wrap(apperr.ErrConflict, "builder name already exists", err)
	case postgres.IsInvalidInput(err):
		return apperr.Wrap(apperr.ErrValidation, "invalid builder", err)
	}
	return err
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Builder, error) {
	const q = `
select id::text, name, email, phone, address, website, created_at, updated_at
from builders
where ($1 = '' or name ilike '%' || $1 || '%')
order by name
limit $2 offset $3;
`
	rows, err := r.db.Query(ctx, q, f.Query, f.Page.Limit, f.Page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list builders: %w", err)
	}
	defer rows.Close()

	out := make([]Builder, 0, 16)
	for rows.Next() {
		var b Builder
		if err := scan(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Builder, error) {
	var b Builder
	err := scan(r.db.QueryRow(ctx, `select `+columns+` from builders where id = $1::uuid;`, id), &b)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (r *Repo) Create(ctx context.Context, in NewBuilder) (*Builder, error) {
	const q = `
insert into builders (name, email, phone, address, website)
values ($1, $2, $3, $4, $5)
returning id::text, name, email, phone, address, website, created_at, updated_at;
`
	var b Builder
	err := scan(r.db.QueryRow(ctx, q, in.Name, in.Email, in.Phone, in.Address, in.Website), &b)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (r *Repo) Update(ctx context.Context, id string, p Patch) (*Builder, error) {
	var u postgres.Update
	if p.Name != nil {
		u.Set("name", *p.Name)
	}
	if p.Email != nil {
		u.Set("email", *p.Email)
	}
	if p.Phone != nil {
		u.Set("phone", *p.Phone)
	}
	if p.Address != nil {
		u.Set("address", *p.Address)
	}
	if p.Website != nil {
		u.Set("website", *p.Website)
	}
	if u.Empty() {
		return r.Get(ctx, id)
	}

	q := `update builders set ` + u.Clause() + ` where id = ` + u.Arg(id) + `::uuid returning ` + columns + `;`
	var b Builder
	if err := scan(r.db.QueryRow(ctx, q, u.Args()...), &b); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

// Delete fails with a conflict while any project, live or soft-deleted,
// still references the builder.
func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from builders where id = $1::uuid;`, id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.ErrConflict, "builder is referenced by projects", err)
		}
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("builder not found")
	}
	return nil
}
