package drawings

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

const columns = `id::text, project_id::text, residential_project_id::text, title, revision, file_key, file_url,
       content_type, size_bytes, uploaded_by::text, created_at, updated_at`

func scan(row interface{ Scan(...any) error }, d *Drawing) error {
	return row.Scan(&d.ID, &d.ProjectID, &d.ResidentialProjectID, &d.Title, &d.Revision, &d.FileKey, &d.FileURL,
		&d.ContentType, &d.SizeBytes, &d.UploadedBy, &d.CreatedAt, &d.UpdatedAt)
}

func mapErr(err error) error {
	if postgres.IsNoRows(err) {
		return apperr.NotFound("drawing not found")
	}
	if postgres.IsInvalidInput(err) {
		return apperr.Wrap(apperr.ErrValidation, "invalid drawing", err)
	}
	return err
}

func (r *Repo) List(ctx context.Context, t board.Table, parentID string, page postgres.Page) ([]Drawing, error) {
	if err := board.RequireLive(ctx, r.db, t, parentID); err != nil {
		return nil, err
	}

	q := `select ` + columns + `
from drawings
where ` + t.ForeignKey() + ` = $1::uuid
order by title, revision
limit $2 offset $3;`
	rows, err := r.db.Query(ctx, q, parentID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	defer rows.Close()

	out := make([]Drawing, 0, 16)
	for rows.Next() {
		var d Drawing
		if err := scan(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Drawing, error) {
	var d Drawing
	if err := scan(r.db.QueryRow(ctx, `select `+columns+` from drawings d where d.id = $1::uuid and `+board.LiveParent("d")+`;`, id), &d); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *Repo) Create(ctx context.Context, t board.Table, parentID string, in NewDrawing) (*Drawing, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create drawing: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := board.RequireLive(ctx, tx, t, parentID); err != nil {
		return nil, err
	}

	q := `
insert into drawings (` + t.ForeignKey() + `, title, revision, file_key, file_url, content_type, size_bytes, uploaded_by)
values ($1::uuid, $2, $3, $4, $5, $6, $7, nullif($8, '')::uuid)
returning ` + columns + `;`
	var d Drawing
	err = scan(tx.QueryRow(ctx, q, parentID, in.Title, in.Revision, in.FileKey, in.FileURL, in.ContentType, in.SizeBytes, in.UploadedBy), &d)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create drawing: %w", err)
	}
	return &d, nil
}

func (r *Repo) Update(ctx context.Context, id string, p Patch) (*Drawing, error) {
	var u postgres.Update
	if p.Title != nil {
		u.Set("title", *p.Title)
	}
	if p.Revision != nil {
		u.Set("revision", *p.Revision)
	}
	if p.FileURL != nil {
		u.Set("file_url", *p.FileURL)
	}
	if u.Empty() {
		return r.Get(ctx, id)
	}

	q := `update drawings d set ` + u.Clause() + ` where d.id = ` + u.Arg(id) + `::uuid and ` + board.LiveParent("d") +
		` returning ` + columns + `;`
	var d Drawing
	if err := scan(r.db.QueryRow(ctx, q, u.Args()...), &d); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

// Delete removes the row and returns its object key, which may be empty.
func (r *Repo) Delete(ctx context.Context, id string) (string, error) {
	var key string
	err := r.db.QueryRow(ctx, `delete from drawings d where d.id = $1::uuid and `+board.LiveParent("d")+` returning d.file_key;`, id).Scan(&key)
	if err != nil {
		return "", mapErr(err)
	}
	return key, nil
}
