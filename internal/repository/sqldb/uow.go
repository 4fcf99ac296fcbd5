package sqldb

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/parlohq/parlo-backend/internal/domain"
)

type uowState int

const (
	uowOpen uowState = iota
	uowCommitted
	uowRolledBack
)

// UnitOfWork owns one transaction. It starts open and reaches a terminal
// state through exactly one Commit or Rollback; Close is the unconditional
// release and rolls back when no outcome was decided.
type UnitOfWork struct {
	tx    *sql.Tx
	dia   dialect
	log   zerolog.Logger
	repos *Repositories
	state uowState
}

var _ domain.UnitOfWork = (*UnitOfWork)(nil)

// Repositories returns the factory bound to this unit's transaction.
func (u *UnitOfWork) Repositories() domain.RepositoryFactory {
	if u.repos == nil {
		u.repos = &Repositories{q: u.tx, dia: u.dia, log: u.log}
	}
	return u.repos
}

// Commit persists all changes made through this unit's repositories.
func (u *UnitOfWork) Commit() error {
	if u.state != uowOpen {
		return domain.ErrUnitOfWorkClosed
	}
	u.state = uowCommitted
	if err := u.tx.Commit(); err != nil {
		return wrapSessionErr(u.dia, "commit transaction", err)
	}
	return nil
}

// Rollback discards all changes made through this unit's repositories.
func (u *UnitOfWork) Rollback() error {
	if u.state != uowOpen {
		return domain.ErrUnitOfWorkClosed
	}
	u.state = uowRolledBack
	if err := u.tx.Rollback(); err != nil {
		return wrapSessionErr(u.dia, "rollback transaction", err)
	}
	return nil
}

// Close releases the session. Safe to defer unconditionally: it rolls back
// iff the unit is still open and is a no-op after Commit or Rollback.
func (u *UnitOfWork) Close() error {
	if u.state != uowOpen {
		return nil
	}
	u.state = uowRolledBack
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.log.Warn().Err(err).Msg("rollback on release failed")
		return wrapSessionErr(u.dia, "rollback transaction", err)
	}
	return nil
}

// Repositories lazily constructs and caches exactly one repository per
// entity kind, all bound to the owning unit's transaction. The cache is
// scoped strictly to that session and never outlives it.
type Repositories struct {
	q   querier
	dia dialect
	log zerolog.Logger

	users         *UserRepository
	workspaces    *WorkspaceRepository
	conversations *ConversationRepository
	messages      *MessageRepository
}

var _ domain.RepositoryFactory = (*Repositories)(nil)

func (f *Repositories) Users() domain.UserRepository {
	if f.users == nil {
		f.users = newUserRepository(f.q, f.dia, f.log)
	}
	return f.users
}

func (f *Repositories) Workspaces() domain.WorkspaceRepository {
	if f.workspaces == nil {
		f.workspaces = newWorkspaceRepository(f.q, f.dia, f.log)
	}
	return f.workspaces
}

func (f *Repositories) Conversations() domain.ConversationRepository {
	if f.conversations == nil {
		f.conversations = newConversationRepository(f.q, f.dia, f.log)
	}
	return f.conversations
}

func (f *Repositories) Messages() domain.MessageRepository {
	if f.messages == nil {
		f.messages = newMessageRepository(f.q, f.dia, f.log)
	}
	return f.messages
}
