package sqldb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlohq/parlo-backend/internal/domain"
)

func TestWorkspaceCreateRequiresOwner(t *testing.T) {
	store := newTestStore(t)

	uow, err := store.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	_, err = uow.Repositories().Workspaces().Create(context.Background(), &domain.Workspace{
		ID:      "w-1",
		Name:    "orphaned",
		OwnerID: "no-such-user",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	var nf *domain.EntityNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityUser, nf.EntityType)
	assert.Equal(t, "no-such-user", nf.ID)
}

func TestWorkspaceGetOwnedScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "owner", "owner@example.com")
	seedUser(t, store, "other", "other@example.com")
	seedWorkspace(t, store, "w-1", "owner")

	inTx(t, store, func(repos domain.RepositoryFactory) error {
		got, found, err := repos.Workspaces().GetOwned(ctx, "w-1", "owner")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "owner", got.OwnerID)

		// Same id, wrong owner: indistinguishable from absence here.
		_, found, err = repos.Workspaces().GetOwned(ctx, "w-1", "other")
		require.NoError(t, err)
		assert.False(t, found)

		// The unscoped lookup still sees the row.
		_, found, err = repos.Workspaces().GetByID(ctx, "w-1")
		require.NoError(t, err)
		assert.True(t, found)
		return nil
	})
}

func TestWorkspaceListAndCountByOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "alice", "alice@example.com")
	seedUser(t, store, "bob", "bob@example.com")
	seedWorkspace(t, store, "w-1", "alice")
	seedWorkspace(t, store, "w-2", "alice")
	seedWorkspace(t, store, "w-3", "bob")

	inTx(t, store, func(repos domain.RepositoryFactory) error {
		mine, err := repos.Workspaces().ListByOwner(ctx, "alice", 0, 0)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "w-1", mine[0].ID)
		assert.Equal(t, "w-2", mine[1].ID)

		n, err := repos.Workspaces().CountByOwner(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = repos.Workspaces().CountByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		return nil
	})
}

func TestWorkspaceUpdateRejectsMissingOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "alice", "alice@example.com")
	seedWorkspace(t, store, "w-1", "alice")

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	_, err = uow.Repositories().Workspaces().Update(ctx, &domain.Workspace{
		ID:      "w-1",
		Name:    "renamed",
		OwnerID: "vanished",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	var nf *domain.EntityNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityUser, nf.EntityType)
}

// Deleting a workspace must not touch the conversations that referenced it;
// references are verified at write time, never enforced by the engine.
func TestWorkspaceDeleteLeavesConversations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "alice", "alice@example.com")
	seedWorkspace(t, store, "w-1", "alice")
	seedConversation(t, store, "c-1", "w-1", "alice")

	inTx(t, store, func(repos domain.RepositoryFactory) error {
		deleted, err := repos.Workspaces().Delete(ctx, "w-1")
		require.NoError(t, err)
		assert.True(t, deleted)
		return nil
	})

	inTx(t, store, func(repos domain.RepositoryFactory) error {
		conv, found, err := repos.Conversations().GetByID(ctx, "c-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "w-1", conv.WorkspaceID)
		return nil
	})
}
