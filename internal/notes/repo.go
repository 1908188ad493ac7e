package notes

import (
	"context"
	"fmt"

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

const selectNote = `
select n.id::text, n.project_id::text, n.residential_project_id::text, n.author_id::text,
       coalesce(trim(u.first_name || ' ' || u.last_name), ''), n.body, n.created_at, n.updated_at
from notes n
left join users u on u.id = n.author_id
`

func scan(row interface{ Scan(...any) error }, n *Note) error {
	return row.Scan(&n.ID, &n.ProjectID, &n.ResidentialProjectID, &n.AuthorID, &n.AuthorName, &n.Body, &n.CreatedAt, &n.UpdatedAt)
}

func mapErr(err error) error {
	if postgres.IsNoRows(err) {
		return apperr.NotFound("note not found")
	}
	return err
}

// List returns the notes of a live card, newest first.
func (r *Repo) List(ctx context.Context, t board.Table, parentID string, page postgres.Page) ([]Note, error) {
	if err := board.RequireLive(ctx, r.db, t, parentID); err != nil {
		return nil, err
	}

	q := selectNote + `
where n.` + t.ForeignKey() + ` = $1::uuid
order by n.created_at desc
limit $2 offset $3;
`
	rows, err := r.db.Query(ctx, q, parentID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]Note, 0, 16)
	for rows.Next() {
		var n Note
		if err := scan(rows, &n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) get(ctx context.Context, q postgres.Querier, id string) (*Note, error) {
	var n Note
	if err := scan(q.QueryRow(ctx, selectNote+`where n.id = $1::uuid and `+board.LiveParent("n")+`;`, id), &n); err != nil {
		return nil, mapErr(err)
	}
	return &n, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Note, error) {
	return r.get(ctx, r.db, id)
}

func (r *Repo) Create(ctx context.Context, t board.Table, parentID, authorID, body string) (*Note, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create note: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := board.RequireLive(ctx, tx, t, parentID); err != nil {
		return nil, err
	}

	var id string
	err = tx.QueryRow(ctx, `
insert into notes (`+t.ForeignKey()+`, author_id, body)
values ($1::uuid, $2::uuid, $3)
returning id::text;
`, parentID, authorID, body).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	n, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create note: %w", err)
	}
	return n, nil
}

func (r *Repo) Update(ctx context.Context, id, body string) (*Note, error) {
	var updated string
	err := r.db.QueryRow(ctx, `
update notes n set body = $2, updated_at = now()
where n.id = $1::uuid and `+board.LiveParent("n")+`
returning n.id::text;
`, id, body).Scan(&updated)
	if err != nil {
		return nil, mapErr(err)
	}
	return r.Get(ctx, updated)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from notes n where n.id = $1::uuid and `+board.LiveParent("n")+`;`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("note not found")
	}
	return nil
}
