package contacts

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

const columns = `id::text, builder_id::text, first_name, last_name, title, email, phone, created_at, updated_at`

func scan(row interface{ Scan(...any) error }, c *Contact) error {
	return row.Scan(&c.ID, &c.BuilderID, &c.FirstName, &c.LastName, &c.Title, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
}

func mapErr(err error) error {
	switch {
	case postgres.IsNoRows(err):
		return apperr.NotFound("contact not found")
	case postgres.IsForeignKeyViolation(err):
		return apperr.Wrap(apperr.ErrValidation, "builder does not exist", err)
	case postgres.IsInvalidInput(err):
		return apperr.Wrap(apperr.ErrValidation, "invalid contact", err)
	}
	return err
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Contact, error) {
	const q = `
select id::text, builder_id::text, first_name, last_name, title, email, phone, created_at, updated_at
from contacts
where ($1::uuid is null or builder_id = $1::uuid)
  and ($2 = '' or first_name || ' ' || last_name ilike '%' || $2 || '%' or email ilike '%' || $2 || '%')
order by last_name, first_name
limit $3 offset $4;
`
	rows, err := r.db.Query(ctx, q, f.BuilderID, f.Query, f.Page.Limit, f.Page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]Contact, 0, 16)
	for rows.Next() {
		var c Contact
		if err := scan(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListByBuilder returns the builder's contacts, or not found when the builder
// does not exist.
func (r *Repo) ListByBuilder(ctx context.Context, builderID string, page postgres.Page) ([]Contact, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `select exists(select 1 from builders where id = $1::uuid);`, builderID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check builder: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("builder not found")
	}
	return r.List(ctx, Filter{BuilderID: &builderID, Page: page})
}

func (r *Repo) Get(ctx context.Context, id string) (*Contact, error) {
	var c Contact
	if err := scan(r.db.QueryRow(ctx, `select `+columns+` from contacts where id = $1::uuid;`, id), &c); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *Repo) Create(ctx context.Context, in NewContact) (*Contact, error) {
	const q = `
insert into contacts (builder_id, first_name, last_name, title, email, phone)
values ($1::uuid, $2, $3, $4, $5, $6)
returning id::text, builder_id::text, first_name, last_name, title, email, phone, created_at, updated_at;
`
	var c Contact
	err := scan(r.db.QueryRow(ctx, q, in.BuilderID, in.FirstName, in.LastName, in.Title, in.Email, in.Phone), &c)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *Repo) Update(ctx context.Context, id string, p Patch) (*Contact, error) {
	var u postgres.Update
	u.SetOptional("builder_id", "uuid", p.BuilderID)
	if p.FirstName != nil {
		u.Set("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		u.Set("last_name", *p.LastName)
	}
	if p.Title != nil {
		u.Set("title", *p.Title)
	}
	if p.Email != nil {
		u.Set("email", *p.Email)
	}
	if p.Phone != nil {
		u.Set("phone", *p.Phone)
	}
	if u.Empty() {
		return r.Get(ctx, id)
	}

	q := `update contacts set ` + u.Clause() + ` where id = ` + u.Arg(id) + `::uuid returning ` + columns + `;`
	var c Contact
	if err := scan(r.db.QueryRow(ctx, q, u.Args()...), &c); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from contacts where id = $1::uuid;`, id)
	if err != nil {
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("contact not found")
	}
	return nil
}
