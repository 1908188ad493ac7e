package board

import (
	"context"
	"fmt"
	"slices"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

var errMovedConcurrently = apperr.Conflict("card was changed by another request, retry")

// LockColumns takes a transaction-scoped advisory lock per status column of
// t. Every writer of board positions holds the locks of the columns it
// touches; they are acquired in board order.
func LockColumns(ctx context.Context, q postgres.Querier, t Table, statuses ...Status) error {
	if !t.valid() {
		return fmt.Errorf("unknown board table %q", t)
	}
	for _, s := range columns {
		if !slices.Contains(statuses, s) {
			continue
		}
		if _, err := q.Exec(ctx, `select pg_advisory_xact_lock(hashtext($1));`, columnKey(t, s)); err != nil {
			return fmt.Errorf("lock %s column %s: %w", t, s, err)
		}
	}
	return nil
}

func columnKey(t Table, s Status) string {
	return "board:" + string(t) + ":" + string(s)
}

func currentStatus(ctx context.Context, q postgres.Querier, t Table, id string) (Status, error) {
	var s string
	err := q.QueryRow(ctx, `select status from `+string(t)+` where id = $1::uuid and deleted_at is null;`, id).Scan(&s)
	if err != nil {
		if postgres.IsNoRows(err) {
			return "", apperr.NotFound("card not found")
		}
		return "", fmt.Errorf("read card status: %w", err)
	}
	return Status(s), nil
}

// Remove soft-deletes card id and closes the gap it leaves in its column.
// q must be a transaction.
func Remove(ctx context.Context, q postgres.Querier, t Table, id string) error {
	status, err := currentStatus(ctx, q, t, id)
	if err != nil {
		return err
	}
	if err := LockColumns(ctx, q, t, status); err != nil {
		return err
	}

	var pos int
	err = q.QueryRow(ctx, `
		update `+string(t)+`
		set deleted_at = now(), updated_at = now()
		where id = $1::uuid and status = $2 and deleted_at is null
		returning board_position
	`, id, string(status)).Scan(&pos)
	if err != nil {
		if postgres.IsNoRows(err) {
			return errMovedConcurrently
		}
		return fmt.Errorf("soft delete card: %w", err)
	}
	return CloseGap(ctx, q, t, status, pos)
}
