package domain

import "context"

// Workspace represents a user-owned collaboration space.
type Workspace struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	OwnerID     string   `json:"ownerId"`
	Metadata    Metadata `json:"metadata"`
}

// WorkspaceFilter narrows List and Count to rows matching every set field.
type WorkspaceFilter struct {
	OwnerID *string
}

// WorkspaceRepository defines the interface for workspace persistence
// operations. GetOwned applies the owner scope as a query predicate, so a
// caller cannot distinguish a denied workspace from a missing one at this
// layer.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) (*Workspace, error)
	GetByID(ctx context.Context, id string) (*Workspace, bool, error)
	GetOwned(ctx context.Context, id, ownerID string) (*Workspace, bool, error)
	List(ctx context.Context, filter WorkspaceFilter, limit, offset int) ([]*Workspace, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*Workspace, error)
	Update(ctx context.Context, workspace *Workspace) (*Workspace, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter WorkspaceFilter) (int64, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}
