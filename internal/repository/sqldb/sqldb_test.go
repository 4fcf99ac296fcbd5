package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// newTestStore opens a file-backed sqlite store in a per-test directory.
// A file (rather than :memory:) keeps the database shared across the
// independent sessions the concurrency tests open.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "parlo_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	store, err := Open(context.Background(), DriverSQLite, dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// inTx runs fn in one committed unit of work and fails the test on error.
func inTx(t *testing.T, store *Store, fn func(repos domain.RepositoryFactory) error) {
	t.Helper()
	require.NoError(t, store.WithinTx(context.Background(), fn))
}

// inReadTx runs fn in a read-only session and fails the test on error.
func inReadTx(t *testing.T, store *Store, fn func(repos domain.RepositoryFactory) error) {
	t.Helper()
	require.NoError(t, store.WithinReadTx(context.Background(), fn))
}

func seedUser(t *testing.T, store *Store, id, email string) *domain.User {
	t.Helper()
	var created *domain.User
	inTx(t, store, func(repos domain.RepositoryFactory) error {
		var err error
		created, err = repos.Users().Create(context.Background(), &domain.User{
			ID:          id,
			DisplayName: "user " + id,
			Email:       email,
			Metadata:    domain.Metadata{},
		})
		return err
	})
	return created
}

func seedWorkspace(t *testing.T, store *Store, id, ownerID string) *domain.Workspace {
	t.Helper()
	var created *domain.Workspace
	inTx(t, store, func(repos domain.RepositoryFactory) error {
		var err error
		created, err = repos.Workspaces().Create(context.Background(), &domain.Workspace{
			ID:       id,
			Name:     "workspace " + id,
			OwnerID:  ownerID,
			Metadata: domain.Metadata{},
		})
		return err
	})
	return created
}

func seedConversation(t *testing.T, store *Store, id, workspaceID string, participantIDs ...string) *domain.Conversation {
	t.Helper()
	var created *domain.Conversation
	inTx(t, store, func(repos domain.RepositoryFactory) error {
		var err error
		created, err = repos.Conversations().Create(context.Background(), &domain.Conversation{
			ID:             id,
			Topic:          "topic " + id,
			WorkspaceID:    workspaceID,
			ParticipantIDs: participantIDs,
			Metadata:       domain.Metadata{},
		})
		return err
	})
	return created
}
