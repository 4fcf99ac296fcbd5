package domain

import (
	"errors"
	"fmt"
)

// Error kinds for errors.Is branching. Every taxonomy error below matches
// exactly one of these.
var (
	ErrNotFound         = errors.New("entity not found")
	ErrDuplicate        = errors.New("duplicate entity")
	ErrAccessDenied     = errors.New("access denied")
	ErrTransient        = errors.New("transient store error")
	ErrPersistence      = errors.New("persistence error")
	ErrUnitOfWorkClosed = errors.New("unit of work already finished")
)

// Validation errors raised by the service layer before anything is persisted.
var (
	ErrEmailRequired   = errors.New("email is required")
	ErrNameRequired    = errors.New("name is required")
	ErrContentRequired = errors.New("content is required")
)

// Entity type names used in taxonomy errors.
const (
	EntityUser         = "User"
	EntityWorkspace    = "Workspace"
	EntityConversation = "Conversation"
	EntityMessage      = "Message"
)

// EntityNotFoundError reports an update or reference against a missing row.
type EntityNotFoundError struct {
	EntityType string
	ID         string
	cause      error
}

// NewEntityNotFound builds an EntityNotFoundError. cause may be nil when the
// absence was established by a query rather than a store failure.
func NewEntityNotFound(entityType, id string, cause error) *EntityNotFoundError {
	return &EntityNotFoundError{EntityType: entityType, ID: id, cause: cause}
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.EntityType, e.ID)
}

func (e *EntityNotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *EntityNotFoundError) Unwrap() error { return e.cause }

// DuplicateEntityError reports a uniqueness constraint violation.
type DuplicateEntityError struct {
	EntityType string
	Field      string
	Value      string
	cause      error
}

// NewDuplicateEntity builds a DuplicateEntityError preserving the driver
// failure for diagnostics.
func NewDuplicateEntity(entityType, field, value string, cause error) *DuplicateEntityError {
	return &DuplicateEntityError{EntityType: entityType, Field: field, Value: value, cause: cause}
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.EntityType, e.Field, e.Value)
}

func (e *DuplicateEntityError) Is(target error) bool { return target == ErrDuplicate }

func (e *DuplicateEntityError) Unwrap() error { return e.cause }

// AccessDeniedError reports that an actor lacks the ownership or
// participation required to act on an entity. It is raised by the service
// layer; repositories only ever report absence for denied scoped lookups.
type AccessDeniedError struct {
	EntityType string
	ID         string
	ActorID    string
}

// NewAccessDenied builds an AccessDeniedError.
func NewAccessDenied(entityType, id, actorID string) *AccessDeniedError {
	return &AccessDeniedError{EntityType: entityType, ID: id, ActorID: actorID}
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("actor %q denied access to %s %q", e.ActorID, e.EntityType, e.ID)
}

func (e *AccessDeniedError) Is(target error) bool { return target == ErrAccessDenied }

// TransientStoreError reports a connectivity or locking failure that may
// succeed on retry. Retrying is the caller's decision and requires a fresh
// unit of work.
type TransientStoreError struct {
	Message string
	cause   error
}

// NewTransientStoreError wraps a retryable store failure.
func NewTransientStoreError(cause error) *TransientStoreError {
	return &TransientStoreError{Message: cause.Error(), cause: cause}
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error: %s", e.Message)
}

func (e *TransientStoreError) Is(target error) bool { return target == ErrTransient }

func (e *TransientStoreError) Unwrap() error { return e.cause }

// PersistenceError is the catch-all for unclassified backing-store failures.
type PersistenceError struct {
	Message string
	cause   error
}

// NewPersistenceError wraps an unclassified store failure under a short
// operation description.
func NewPersistenceError(op string, cause error) *PersistenceError {
	msg := op
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", op, cause.Error())
	}
	return &PersistenceError{Message: msg, cause: cause}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s", e.Message)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.cause }
