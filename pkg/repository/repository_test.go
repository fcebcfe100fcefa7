package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/consult/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
	errInvalid   = errors.New("invalid")

	testErrors = repository.Errors{
		NotFound:  errNotFound,
		Duplicate: errDuplicate,
		Invalid:   errInvalid,
	}
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")
	serialization := &pgconn.PgError{Code: "40001"}

	tests := []struct {
		name string
		err  error
		errs repository.Errors
		want error
	}{
		{"nil", nil, testErrors, nil},
		{"no rows", sql.ErrNoRows, testErrors, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), testErrors, errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, testErrors, errDuplicate},
		{"foreign key violation", &pgconn.PgError{Code: "23503", Message: "unknown officer"}, testErrors, errInvalid},
		{"check violation", &pgconn.PgError{Code: "23514"}, testErrors, errInvalid},
		{"unmapped pg error", serialization, testErrors, serialization},
		{"passthrough", other, testErrors, other},
		{"no rows without mapping", sql.ErrNoRows, repository.Errors{}, sql.ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, tt.errs)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("MapError() = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("MapError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapErrorKeepsConstraintMessage(t *testing.T) {
	err := repository.MapError(&pgconn.PgError{Code: "23503", Message: "unknown officer"}, testErrors)
	if got := err.Error(); got != "invalid\nunknown officer" {
		t.Errorf("MapError().Error() = %q", got)
	}
}
