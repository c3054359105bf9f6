package operations

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected foreign key violation to not match")
	}
	if isUniqueViolation(nil) {
		t.Fatalf("expected nil to not match")
	}
}

func TestOperationErrorCode(t *testing.T) {
	err := &Error{Code: ErrAlreadyEnrolled}
	if err.Error() != "already_enrolled" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}
