package users

import (
	"context"
	"fmt"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/auth"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Repo struct {
	db postgres.DB
}

func NewRepo(db postgres.DB) *Repo {
	return &Repo{db: db}
}

var _ auth.AccountStore = (*Repo)(nil)

const columns = `id::text, email, first_name, last_name, role, position_id::text, is_active, last_login_at, created_at, updated_at, password_hash`

func scan(row interface{ Scan(...any) error }, u *User) error {
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &role, &u.PositionID, &u.Active,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &u.PasswordHash)
	u.Role = auth.Role(role)
	return err
}

func mapErr(err error) error {
	switch {
	case postgres.IsNoRows(err):
		return apperr.NotFound("user not found")
	case postgres.IsUniqueViolation(err):
		return apperr.Wrap(apperr.ErrConflict, "email already exists", err)
	case postgres.IsForeignKeyViolation(err):
		return apperr.Wrap(apperr.ErrValidation, "position does not exist", err)
	case postgres.IsInvalidInput(err):
		return apperr.Wrap(apperr.ErrValidation, "invalid user", err)
	}
	return err
}

func (r *Repo) List(ctx context.Context, f Filter) ([]User, error) {
	q := `
select ` + columns + `
from users
where ($1 = '' or email ilike '%' || $1 || '%' or first_name || ' ' || last_name ilike '%' || $1 || '%')
  and ($2 = '' or role = $2)
order by last_name, first_name, email
limit $3 offset $4;
`
	rows, err := r.db.Query(ctx, q, f.Query, string(f.Role), f.Page.Limit, f.Page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]User, 0, 16)
	for rows.Next() {
		var u User
		if err := scan(rows, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*User, error) {
	var u User
	if err := scan(r.db.QueryRow(ctx, `select `+columns+` from users where id = $1::uuid;`, id), &u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *Repo) Create(ctx context.Context, in NewUser) (*User, error) {
	q := `
insert into users (email, password_hash, first_name, last_name, role, position_id)
values ($1, $2, $3, $4, $5, $6::uuid)
returning ` + columns + `;
`
	var u User
	err := scan(r.db.QueryRow(ctx, q, in.Email, in.PasswordHash, in.FirstName, in.LastName, string(in.Role), in.PositionID), &u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *Repo) Update(ctx context.Context, id string, p Patch) (*User, error) {
	var u postgres.Update
	if p.FirstName != nil {
		u.Set("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		u.Set("last_name", *p.LastName)
	}
	if p.Role != nil {
		u.Set("role", string(*p.Role))
	}
	u.SetOptional("position_id", "uuid", p.PositionID)
	if p.Active != nil {
		u.Set("is_active", *p.Active)
	}
	if u.Empty() {
		return r.Get(ctx, id)
	}

	q := `update users set ` + u.Clause() + ` where id = ` + u.Arg(id) + `::uuid returning ` + columns + `;`
	var out User
	if err := scan(r.db.QueryRow(ctx, q, u.Args()...), &out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *Repo) SetPassword(ctx context.Context, id, hash string) error {
	ct, err := r.db.Exec(ctx, `update users set password_hash = $2, updated_at = now() where id = $1::uuid;`, id, hash)
	if err != nil {
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from users where id = $1::uuid;`, id)
	if err != nil {
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// EnsureAdmin creates an admin account or, when the email exists, promotes
// it, reactivates it and resets its password.
func (r *Repo) EnsureAdmin(ctx context.Context, email, hash, firstName, lastName string) (*User, error) {
	q := `
insert into users (email, password_hash, first_name, last_name, role, is_active)
values ($1, $2, $3, $4, 'admin', true)
on conflict (lower(email)) do update
set
  password_hash = excluded.password_hash,
  first_name = coalesce(nullif(excluded.first_name, ''), users.first_name),
  last_name = coalesce(nullif(excluded.last_name, ''), users.last_name),
  role = 'admin',
  is_active = true,
  updated_at = now()
returning ` + columns + `;
`
	var u User
	if err := scan(r.db.QueryRow(ctx, q, email, hash, firstName, lastName), &u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *Repo) AccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	var u User
	if err := scan(r.db.QueryRow(ctx, `select `+columns+` from users where lower(email) = lower($1);`, email), &u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *Repo) AccountByID(ctx context.Context, id string) (*auth.Account, error) {
	return r.Get(ctx, id)
}

func (r *Repo) CreateAccount(ctx context.Context, in auth.NewAccount) (*auth.Account, error) {
	return r.Create(ctx, NewUser{
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
	})
}

func (r *Repo) RecordLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `update users set last_login_at = now() where id = $1::uuid;`, id)
	return err
}
