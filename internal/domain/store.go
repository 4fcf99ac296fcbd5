package domain

import "context"

// RepositoryFactory hands out repositories bound to one transactional
// session. All repositories from the same factory share that transaction,
// which is what keeps multi-entity operations atomic.
type RepositoryFactory interface {
	Users() UserRepository
	Workspaces() WorkspaceRepository
	Conversations() ConversationRepository
	Messages() MessageRepository
}

// UnitOfWork owns one transactional session. It starts open and moves to a
// terminal state through exactly one Commit or Rollback; Close is the
// guaranteed release and rolls back if the unit is still open. Commit and
// Rollback on a finished unit return ErrUnitOfWorkClosed.
type UnitOfWork interface {
	Repositories() RepositoryFactory
	Commit() error
	Rollback() error
	Close() error
}

// Store opens units of work against the backing store. Implementations are
// selected once at startup via configuration. Write-intent and read-only
// sessions are distinct: engines that serialize writers can then let
// contending writers queue while readers proceed against committed state.
type Store interface {
	// Begin acquires a new write-intent session. The caller must ensure
	// Close runs on every exit path, typically via defer.
	Begin(ctx context.Context) (UnitOfWork, error)
	// BeginRead acquires a new read-only session. Repositories obtained
	// from it must not write.
	BeginRead(ctx context.Context) (UnitOfWork, error)
	// WithinTx runs fn inside one write-intent unit of work, committing
	// when fn returns nil and rolling back otherwise. The session is
	// released on every exit path, including panics.
	WithinTx(ctx context.Context, fn func(RepositoryFactory) error) error
	// WithinReadTx is WithinTx over a read-only session.
	WithinReadTx(ctx context.Context, fn func(RepositoryFactory) error) error
	Close() error
}
