package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buildboard/buildboard-backend/internal/board"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

// ObjectDeleter removes stored drawing files. drawings.S3Store satisfies it.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Purger hard-deletes cards that have been soft-deleted for longer than the
// retention period. Notes and drawings go with them through ON DELETE CASCADE.
type Purger struct {
	db        postgres.DB
	files     ObjectDeleter
	retention time.Duration
	now       func() time.Time
}

// PurgeResult counts what one run removed.
type PurgeResult struct {
	Projects            int64
	ResidentialProjects int64
	Objects             int
}

// NewPurger accepts a nil files when object storage is not configured.
func NewPurger(db postgres.DB, files ObjectDeleter, retention time.Duration) *Purger {
	return &Purger{db: db, files: files, retention: retention, now: time.Now}
}

func (p *Purger) Run(ctx context.Context) (PurgeResult, error) {
	var res PurgeResult
	cutoff := p.now().Add(-p.retention)

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin purge: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var keys []string
	for _, t := range []board.Table{board.Projects, board.ResidentialProjects} {
		k, err := expiredKeys(ctx, tx, t, cutoff)
		if err != nil {
			return res, err
		}
		keys = append(keys, k...)

		tag, err := tx.Exec(ctx, `
			delete from `+string(t)+`
			where deleted_at is not null and deleted_at < $1
		`, cutoff)
		if err != nil {
			return res, fmt.Errorf("purge %s: %w", t, err)
		}
		if t == board.Projects {
			res.Projects = tag.RowsAffected()
		} else {
			res.ResidentialProjects = tag.RowsAffected()
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit purge: %w", err)
	}

	if p.files == nil {
		return res, nil
	}
	for _, key := range keys {
		if err := p.files.Delete(ctx, key); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("file_key", key).Msg("purge: failed to delete drawing object")
			continue
		}
		res.Objects++
	}
	return res, nil
}

func expiredKeys(ctx context.Context, q postgres.Querier, t board.Table, cutoff time.Time) ([]string, error) {
	rows, err := q.Query(ctx, `
		select d.file_key
		from drawings d
		join `+string(t)+` c on c.id = d.`+t.ForeignKey()+`
		where c.deleted_at is not null and c.deleted_at < $1 and d.file_key <> ''
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired %s drawings: %w", t.Noun(), err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
