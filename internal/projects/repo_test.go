package projects

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildboard/buildboard-backend/internal/apperr"
	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

const projectID = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"

func expectLock(mock pgxmock.PgxPoolIface, key string) {
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WithArgs(key).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

func TestRepo_DeleteClosesColumnGap(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("select status from projects")).
		WithArgs(projectID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("in_review"))
	expectLock(mock, "board:projects:in_review")
	mock.ExpectQuery(regexp.QuoteMeta("set deleted_at = now(), updated_at = now()")).
		WithArgs(projectID, "in_review").
		WillReturnRows(pgxmock.NewRows([]string{"board_position"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("set board_position = board_position - 1")).
		WithArgs("in_review", 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	require.NoError(t, NewRepo(mock).Delete(context.Background(), projectID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_DeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("select status from projects")).
		WithArgs(projectID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err = NewRepo(mock).Delete(context.Background(), projectID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "project not found", apperr.Message(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_CreateUnknownBuilder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	builderID := "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"

	mock.ExpectBegin()
	expectLock(mock, "board:projects:new")
	mock.ExpectQuery(regexp.QuoteMeta("select coalesce(max(board_position) + 1, 0)::int")).
		WithArgs("new").
		WillReturnRows(pgxmock.NewRows([]string{"pos"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("insert into projects")).
		WithArgs("Harbor Tower", builderID, "", "", "new", 7, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: postgres.CodeForeignKeyViolation, ConstraintName: "projects_builder_id_fkey"})
	mock.ExpectRollback()

	_, err = NewRepo(mock).Create(context.Background(), NewProject{Name: "Harbor Tower", BuilderID: builderID})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "builder does not exist", apperr.Message(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapErr_Assignee(t *testing.T) {
	err := mapErr(&pgconn.PgError{Code: postgres.CodeForeignKeyViolation, ConstraintName: "projects_assigned_to_fkey"})
	assert.Equal(t, "assignee does not exist", apperr.Message(err))
}
