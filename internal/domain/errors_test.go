package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestEntityNotFoundError(t *testing.T) {
	cause := errors.New("row vanished")
	err := NewEntityNotFound(EntityUser, "u-1", cause)

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound) to be true")
	}
	if errors.Is(err, ErrDuplicate) {
		t.Error("expected errors.Is(err, ErrDuplicate) to be false")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to survive unwrapping")
	}
	if got, want := err.Error(), `User "u-1" not found`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var nf *EntityNotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("expected errors.As to extract *EntityNotFoundError")
	}
	if nf.EntityType != EntityUser || nf.ID != "u-1" {
		t.Errorf("unexpected fields: %+v", nf)
	}
}

func TestEntityNotFoundErrorNilCause(t *testing.T) {
	err := NewEntityNotFound(EntityWorkspace, "w-1", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound) to be true")
	}
	if errors.Unwrap(err) != nil {
		t.Error("expected nil cause")
	}
}

func TestDuplicateEntityError(t *testing.T) {
	cause := errors.New("unique violation")
	err := NewDuplicateEntity(EntityUser, "email", "ada@example.com", cause)

	if !errors.Is(err, ErrDuplicate) {
		t.Error("expected errors.Is(err, ErrDuplicate) to be true")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to survive unwrapping")
	}
	if got, want := err.Error(), `User with email "ada@example.com" already exists`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAccessDeniedError(t *testing.T) {
	err := NewAccessDenied(EntityWorkspace, "w-1", "u-2")
	if !errors.Is(err, ErrAccessDenied) {
		t.Error("expected errors.Is(err, ErrAccessDenied) to be true")
	}
	if got, want := err.Error(), `actor "u-2" denied access to Workspace "w-1"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransientStoreError(t *testing.T) {
	cause := errors.New("database is locked")
	err := NewTransientStoreError(cause)
	if !errors.Is(err, ErrTransient) {
		t.Error("expected errors.Is(err, ErrTransient) to be true")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to survive unwrapping")
	}
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewPersistenceError("insert user", cause)
	if !errors.Is(err, ErrPersistence) {
		t.Error("expected errors.Is(err, ErrPersistence) to be true")
	}
	if got, want := err.Error(), "persistence error: insert user: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = NewPersistenceError("insert user", nil)
	if got, want := err.Error(), "persistence error: insert user"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTaxonomySentinelsAreDisjoint(t *testing.T) {
	cause := errors.New("cause")
	cases := []struct {
		err      error
		sentinel error
	}{
		{NewEntityNotFound(EntityUser, "x", nil), ErrNotFound},
		{NewDuplicateEntity(EntityUser, "id", "x", cause), ErrDuplicate},
		{NewAccessDenied(EntityUser, "x", "y"), ErrAccessDenied},
		{NewTransientStoreError(cause), ErrTransient},
		{NewPersistenceError("op", cause), ErrPersistence},
	}
	sentinels := []error{ErrNotFound, ErrDuplicate, ErrAccessDenied, ErrTransient, ErrPersistence}
	for _, tc := range cases {
		for _, s := range sentinels {
			got := errors.Is(tc.err, s)
			want := s == tc.sentinel
			if got != want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tc.err, s, got, want)
			}
		}
	}
}

func TestWrappedTaxonomyErrorsStillMatch(t *testing.T) {
	err := fmt.Errorf("load snapshot: %w", NewDuplicateEntity(EntityUser, "email", "a@b.c", nil))
	if !errors.Is(err, ErrDuplicate) {
		t.Error("expected sentinel match through fmt.Errorf wrapping")
	}
	var dup *DuplicateEntityError
	if !errors.As(err, &dup) {
		t.Error("expected errors.As through fmt.Errorf wrapping")
	}
}
