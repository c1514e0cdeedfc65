package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_poi_memberships_active"}
	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(pgErr, "idx_poi_memberships_active") {
		t.Fatal("expected constraint match")
	}
	if IsUniqueViolation(pgErr, "other_constraint") {
		t.Fatal("expected constraint mismatch")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: poi_memberships.member_id"), "") {
		t.Fatal("expected sqlite phrasing to match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not match")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("expected pg foreign key violation")
	}
	if !IsForeignKeyViolation(fmt.Errorf("delete poi: %w", errors.New("FOREIGN KEY constraint failed"))) {
		t.Fatal("expected sqlite phrasing to match")
	}
	if IsForeignKeyViolation(errors.New("duplicate key value")) {
		t.Fatal("unique violation must not match")
	}
}

func TestIsSerializationFailure(t *testing.T) {
	if !IsSerializationFailure(&pgconn.PgError{Code: "40001"}) {
		t.Fatal("expected pg serialization failure to match")
	}
	wrapped := fmt.Errorf("commit: %w", errors.New("pq: could not serialize access due to concurrent update"))
	if !IsSerializationFailure(wrapped) {
		t.Fatal("expected driver phrasing to match")
	}
	if IsSerializationFailure(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation must not match")
	}
	if IsSerializationFailure(nil) {
		t.Fatal("nil error must not match")
	}
}
