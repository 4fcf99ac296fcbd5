package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/parlohq/parlo-backend/internal/domain"
	"github.com/parlohq/parlo-backend/internal/identity"
)

// WorkspaceService handles workspace-related business logic, including the
// ownership checks the repositories deliberately leave to this layer.
type WorkspaceService struct {
	store domain.Store
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(store domain.Store) *WorkspaceService {
	return &WorkspaceService{store: store}
}

// CreateWorkspaceInput carries the fields for a new workspace. The owner is
// always the acting user.
type CreateWorkspaceInput struct {
	ID          string
	Name        string
	Description string
	Metadata    domain.Metadata
}

// Create creates a workspace owned by the actor.
func (s *WorkspaceService) Create(ctx context.Context, actor identity.Identity, in CreateWorkspaceInput) (*domain.Workspace, error) {
	if in.Name == "" {
		return nil, domain.ErrNameRequired
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	var created *domain.Workspace
	err := s.store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		ws, err := repos.Workspaces().Create(ctx, &domain.Workspace{
			ID:          id,
			Name:        in.Name,
			Description: in.Description,
			OwnerID:     actor.UserID,
			Metadata:    in.Metadata,
		})
		created = ws
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get retrieves a workspace the actor may see.
func (s *WorkspaceService) Get(ctx context.Context, actor identity.Identity, id string) (*domain.Workspace, error) {
	var ws *domain.Workspace
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		var err error
		ws, err = workspaceForActor(ctx, repos, actor, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// ListMine returns the actor's own workspaces.
func (s *WorkspaceService) ListMine(ctx context.Context, actor identity.Identity, limit, offset int) ([]*domain.Workspace, error) {
	var out []*domain.Workspace
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		var err error
		out, err = repos.Workspaces().ListByOwner(ctx, actor.UserID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountMine returns how many workspaces the actor owns.
func (s *WorkspaceService) CountMine(ctx context.Context, actor identity.Identity) (int64, error) {
	var n int64
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		var err error
		n, err = repos.Workspaces().CountByOwner(ctx, actor.UserID)
		return err
	})
	return n, err
}

// UpdateWorkspaceInput carries the mutable workspace fields.
type UpdateWorkspaceInput struct {
	ID          string
	Name        string
	Description string
	Metadata    domain.Metadata
}

// Update replaces a workspace's fields. Ownership never changes here.
func (s *WorkspaceService) Update(ctx context.Context, actor identity.Identity, in UpdateWorkspaceInput) (*domain.Workspace, error) {
	if in.Name == "" {
		return nil, domain.ErrNameRequired
	}
	var updated *domain.Workspace
	err := s.store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		ws, err := workspaceForActor(ctx, repos, actor, in.ID)
		if err != nil {
			return err
		}
		ws.Name = in.Name
		ws.Description = in.Description
		ws.Metadata = in.Metadata
		updated, err = repos.Workspaces().Update(ctx, ws)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a workspace the actor may act on. Conversations inside it
// remain untouched.
func (s *WorkspaceService) Delete(ctx context.Context, actor identity.Identity, id string) error {
	return s.store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		if _, err := workspaceForActor(ctx, repos, actor, id); err != nil {
			return err
		}
		_, err := repos.Workspaces().Delete(ctx, id)
		return err
	})
}
