package builders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

const builderID = "0b5e4a36-6f0a-4a56-8f4f-3c2d1e0f9a8b"

var builderCols = []string{"id", "name", "email", "phone", "address", "website", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestRepo_Create(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("insert into builders (name, email, phone, address, website)")).
		WithArgs("Acme Homes", "info@acme.test", "555-0100", "1 Main St", "").
		WillReturnRows(pgxmock.NewRows(builderCols).
			AddRow(builderID, "Acme Homes", "info@acme.test", "555-0100", "1 Main St", "", now, now))

	b, err := NewRepo(mock).Create(context.Background(), NewBuilder{
		Name:    "Acme Homes",
		Email:   "info@acme.test",
		Phone:   "555-0100",
		Address: "1 Main St",
	})
	require.NoError(t, err)
	assert.Equal(t, builderID, b.ID)
	assert.Equal(t, "Acme Homes", b.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Create_Duplicate(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("insert into builders")).
		WithArgs("Acme Homes", "", "", "", "").
		WillReturnError(&pgconn.PgError{Code: postgres.CodeUniqueViolation, ConstraintName: "builders_name_key"})

	_, err := NewRepo(mock).Create(context.Background(), NewBuilder{Name: "Acme Homes"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Get_NotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("from builders where id = $1::uuid")).
		WithArgs(builderID).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewRepo(mock).Get(context.Background(), builderID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_List(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("from builders")).
		WithArgs("acme", 50, 0).
		WillReturnRows(pgxmock.NewRows(builderCols).
			AddRow(builderID, "Acme Homes", "", "", "", "", now, now).
			AddRow("7e0c1a2b-3d4e-4f5a-8b6c-7d8e9f0a1b2c", "Acme Commercial", "", "", "", "", now, now))

	items, err := NewRepo(mock).List(context.Background(), Filter{Query: "acme", Page: postgres.Page{}.Normalize()})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Acme Commercial", items[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Update_Partial(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("update builders set phone = $1, updated_at = now() where id = $2::uuid")).
		WithArgs("555-0199", builderID).
		WillReturnRows(pgxmock.NewRows(builderCols).
			AddRow(builderID, "Acme Homes", "", "555-0199", "", "", now, now))

	phone := "555-0199"
	b, err := NewRepo(mock).Update(context.Background(), builderID, Patch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", b.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Delete(t *testing.T) {
	t.Run("removed", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("delete from builders")).
			WithArgs(builderID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, NewRepo(mock).Delete(context.Background(), builderID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("delete from builders")).
			WithArgs(builderID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, NewRepo(mock).Delete(context.Background(), builderID), apperr.ErrNotFound)
	})

	t.Run("referenced", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("delete from builders")).
			WithArgs(builderID).
			WillReturnError(&pgconn.PgError{Code: postgres.CodeForeignKeyViolation})

		assert.ErrorIs(t, NewRepo(mock).Delete(context.Background(), builderID), apperr.ErrConflict)
	})
}
