package sqldb

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlohq/parlo-backend/internal/domain"
)

func TestUnitOfWorkRollbackIsAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "alice", "alice@example.com")

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		if _, err := repos.Users().Create(ctx, &domain.User{ID: "bob", Email: "bob@example.com"}); err != nil {
			return err
		}
		if _, err := repos.Workspaces().Create(ctx, &domain.Workspace{ID: "w-1", Name: "w", OwnerID: "bob"}); err != nil {
			return err
		}
		if _, err := repos.Conversations().Create(ctx, &domain.Conversation{
			ID: "c-1", WorkspaceID: "w-1", ParticipantIDs: []string{"bob"},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// None of the three writes survived.
	inTx(t, store, func(repos domain.RepositoryFactory) error {
		_, found, err := repos.Users().GetByID(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, found)

		n, err := repos.Workspaces().Count(ctx, domain.WorkspaceFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		n, err = repos.Conversations().Count(ctx, domain.ConversationFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		return nil
	})
}

func TestUnitOfWorkCloseRollsBackOpenWork(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	_, err = uow.Repositories().Users().Create(ctx, &domain.User{ID: "u-1", Email: "u-1@example.com"})
	require.NoError(t, err)
	require.NoError(t, uow.Close())

	inTx(t, store, func(repos domain.RepositoryFactory) error {
		_, found, err := repos.Users().GetByID(ctx, "u-1")
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
}

func TestUnitOfWorkTerminalStates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	assert.ErrorIs(t, uow.Commit(), domain.ErrUnitOfWorkClosed)
	assert.ErrorIs(t, uow.Rollback(), domain.ErrUnitOfWorkClosed)
	assert.NoError(t, uow.Close())

	uow, err = store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())
	assert.ErrorIs(t, uow.Commit(), domain.ErrUnitOfWorkClosed)
	assert.NoError(t, uow.Close())
}

func TestUnitOfWorkUncommittedInvisible(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()
	_, err = uow.Repositories().Users().Create(ctx, &domain.User{ID: "u-1", Email: "u-1@example.com"})
	require.NoError(t, err)

	// A second, independent read session must not observe the pending
	// write, and must not queue behind it either.
	inReadTx(t, store, func(repos domain.RepositoryFactory) error {
		_, found, err := repos.Users().GetByID(ctx, "u-1")
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})

	require.NoError(t, uow.Commit())

	inReadTx(t, store, func(repos domain.RepositoryFactory) error {
		_, found, err := repos.Users().GetByID(ctx, "u-1")
		require.NoError(t, err)
		assert.True(t, found)
		return nil
	})
}

func TestWithinTxReleasesOnPanic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
			if _, err := repos.Users().Create(ctx, &domain.User{ID: "u-1", Email: "u-1@example.com"}); err != nil {
				return err
			}
			panic("unwound")
		})
	}()

	// The session was released: the write is gone and new work proceeds.
	inTx(t, store, func(repos domain.RepositoryFactory) error {
		n, err := repos.Users().Count(ctx, domain.UserFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		return nil
	})
	seedUser(t, store, "u-2", "u-2@example.com")
}

func TestWithinTxConcurrentSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "alice", "alice@example.com")

	// Each write session takes the write lock at begin, so the second
	// one queues on the busy timeout instead of failing mid-unit.
	ids := []string{"w-1", "w-2"}
	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
				_, err := repos.Workspaces().Create(ctx, &domain.Workspace{
					ID: id, Name: "workspace " + id, OwnerID: "alice",
				})
				return err
			})
		}(i, id)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "session %d", i)
	}

	inTx(t, store, func(repos domain.RepositoryFactory) error {
		n, err := repos.Workspaces().CountByOwner(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		return nil
	})
}

func TestWithinTxCancelledContextRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		if _, err := repos.Users().Create(ctx, &domain.User{ID: "u-1", Email: "u-1@example.com"}); err != nil {
			return err
		}
		cancel()
		_, err := repos.Users().Create(ctx, &domain.User{ID: "u-2", Email: "u-2@example.com"})
		return err
	})
	require.ErrorIs(t, err, domain.ErrTransient)

	// The unit rolled back and the store remains usable.
	inTx(t, store, func(repos domain.RepositoryFactory) error {
		n, err := repos.Users().Count(context.Background(), domain.UserFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		return nil
	})
	seedUser(t, store, "u-3", "u-3@example.com")
}
