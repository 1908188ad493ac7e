package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeInvalidText         = "22P02"
)

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func IsUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == CodeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == CodeForeignKeyViolation
}

// IsInvalidInput reports check constraint failures and malformed literals
// (for example a bad uuid or date string).
func IsInvalidInput(err error) bool {
	code, _ := pgCode(err)
	return code == CodeCheckViolation || code == CodeInvalidText
}

// Constraint returns the violated constraint name, if any.
func Constraint(err error) string {
	_, name := pgCode(err)
	return name
}
