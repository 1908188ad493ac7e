package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("applies schema inside a locked transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WithArgs(schemaLockID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS positions`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, EnsureSchema(context.Background(), db))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the DDL fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WithArgs(schemaLockID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS positions`).
			WillReturnError(errors.New("permission denied"))
		mock.ExpectRollback()

		err := EnsureSchema(context.Background(), db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "apply schema")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSchema_DeclaresEveryTable(t *testing.T) {
	for _, table := range []string{
		"positions", "users", "builders", "contacts",
		"projects", "residential_projects", "notes", "drawings",
	} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
