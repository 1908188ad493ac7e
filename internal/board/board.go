// Package board holds the Kanban status set shared by projects and
// residential projects and the card ordering within each status column.
package board

import (
	"context"
	"fmt"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusOnHold     Status = "on_hold"
	StatusCompleted  Status = "completed"
)

var columns = []Status{StatusNew, StatusInProgress, StatusInReview, StatusOnHold, StatusCompleted}

// Columns returns the statuses in board order.
func Columns() []Status {
	out := make([]Status, len(columns))
	copy(out, columns)
	return out
}

func (s Status) Valid() bool {
	for _, c := range columns {
		if s == c {
			return true
		}
	}
	return false
}

// ParseStatus validates s. An empty string is rejected.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", apperr.Validation(fmt.Sprintf("invalid status %q", s))
	}
	return st, nil
}

// Table names a card table. Only the constants below are accepted so the
// name can be interpolated into SQL.
type Table string

const (
	Projects            Table = "projects"
	ResidentialProjects Table = "residential_projects"
)

func (t Table) valid() bool {
	return t == Projects || t == ResidentialProjects
}

// NextPosition locks the status column for the rest of the transaction and
// returns the position of a card appended to it. Call it inside the
// transaction that inserts the card.
func NextPosition(ctx context.Context, q postgres.Querier, t Table, status Status) (int, error) {
	if err := LockColumns(ctx, q, t, status); err != nil {
		return 0, err
	}
	var pos int
	err := q.QueryRow(ctx, `
		select coalesce(max(board_position) + 1, 0)::int
		from `+string(t)+`
		where status = $1 and deleted_at is null
	`, string(status)).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("next board position: %w", err)
	}
	return pos, nil
}

// Move takes card id out of its column, closes the gap it leaves and inserts
// it into column to at position pos. A nil pos appends; positions past the
// end of the column are clamped. The whole move runs in one transaction.
func Move(ctx context.Context, db postgres.DB, t Table, id string, to Status, pos *int) (int, error) {
	if !t.valid() {
		return 0, fmt.Errorf("unknown board table %q", t)
	}
	if !to.Valid() {
		return 0, apperr.Validation(fmt.Sprintf("invalid status %q", to))
	}
	if pos != nil && *pos < 0 {
		return 0, apperr.Validation("board_position must be >= 0")
	}
	table := string(t)

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin move: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	from, err := currentStatus(ctx, tx, t, id)
	if err != nil {
		return 0, err
	}
	if err := LockColumns(ctx, tx, t, from, to); err != nil {
		return 0, err
	}

	var locked string
	var cur int
	err = tx.QueryRow(ctx, `
		select status, board_position
		from `+table+`
		where id = $1::uuid and deleted_at is null
		for update
	`, id).Scan(&locked, &cur)
	if err != nil {
		if postgres.IsNoRows(err) {
			return 0, apperr.NotFound("card not found")
		}
		return 0, fmt.Errorf("lock card: %w", err)
	}
	if Status(locked) != from {
		return 0, errMovedConcurrently
	}

	if _, err := tx.Exec(ctx, `
		update `+table+`
		set board_position = board_position - 1
		where status = $1 and board_position > $2 and deleted_at is null
	`, string(from), cur); err != nil {
		return 0, fmt.Errorf("close column gap: %w", err)
	}

	var size int
	err = tx.QueryRow(ctx, `
		select count(*)::int
		from `+table+`
		where status = $1 and id <> $2::uuid and deleted_at is null
	`, string(to), id).Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("count column: %w", err)
	}

	target := size
	if pos != nil && *pos < size {
		target = *pos
	}

	if _, err := tx.Exec(ctx, `
		update `+table+`
		set board_position = board_position + 1
		where status = $1 and board_position >= $2 and id <> $3::uuid and deleted_at is null
	`, string(to), target, id); err != nil {
		return 0, fmt.Errorf("open column gap: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		update `+table+`
		set status = $1, board_position = $2, updated_at = now()
		where id = $3::uuid
	`, string(to), target, id); err != nil {
		return 0, fmt.Errorf("place card: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit move: %w", err)
	}
	return target, nil
}

// CloseGap shifts the cards after a removed one up by one. Callers run it in
// the same transaction that removes the card.
func CloseGap(ctx context.Context, q postgres.Querier, t Table, status Status, pos int) error {
	if !t.valid() {
		return fmt.Errorf("unknown board table %q", t)
	}
	_, err := q.Exec(ctx, `
		update `+string(t)+`
		set board_position = board_position - 1
		where status = $1 and board_position > $2 and deleted_at is null
	`, string(status), pos)
	if err != nil {
		return fmt.Errorf("close column gap: %w", err)
	}
	return nil
}
