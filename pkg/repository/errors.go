package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes translated by MapError.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Errors names the domain errors a repository reports for each class of
// database failure. A nil field leaves that class of error unchanged.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// MapError translates database errors to the domain errors in errs.
// sql.ErrNoRows maps to NotFound, unique violations to Duplicate, and
// foreign key or check violations to Invalid. Anything else, including
// errors already in the domain, is returned unchanged.
func MapError(err error, errs Errors) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && errs.NotFound != nil {
		return errs.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		if errs.Duplicate != nil {
			return errs.Duplicate
		}
	case pgForeignKeyViolation, pgCheckViolation:
		if errs.Invalid != nil {
			return errors.Join(errs.Invalid, errors.New(pgErr.Message))
		}
	}

	return err
}
