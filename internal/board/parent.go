package board

import (
	"context"
	"fmt"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

// ForeignKey is the column notes and drawings use to point at a card of
// this table.
func (t Table) ForeignKey() string {
	switch t {
	case ResidentialProjects:
		return "residential_project_id"
	default:
		return "project_id"
	}
}

// Noun names a card of this table in error messages.
func (t Table) Noun() string {
	switch t {
	case ResidentialProjects:
		return "residential project"
	default:
		return "project"
	}
}

// RequireLive returns not found unless card id exists and is not deleted.
func RequireLive(ctx context.Context, q postgres.Querier, t Table, id string) error {
	if !t.valid() {
		return fmt.Errorf("unknown board table %q", t)
	}
	var ok bool
	err := q.QueryRow(ctx, `select exists(select 1 from `+string(t)+` where id = $1::uuid and deleted_at is null);`, id).Scan(&ok)
	if err != nil {
		return fmt.Errorf("check %s: %w", t.Noun(), err)
	}
	if !ok {
		return apperr.NotFound(t.Noun() + " not found")
	}
	return nil
}

// LiveParent is a where-clause fragment that holds when the card a notes or
// drawings row (aliased as alias) belongs to has not been soft deleted.
func LiveParent(alias string) string {
	return `exists (
  select 1 from projects p where p.id = ` + alias + `.project_id and p.deleted_at is null
  union all
  select 1 from residential_projects rp where rp.id = ` + alias + `.residential_project_id and rp.deleted_at is null
)`
}
