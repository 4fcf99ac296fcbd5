package sqldb

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// WorkspaceRepository implements domain.WorkspaceRepository over one
// transactional session.
type WorkspaceRepository struct {
	t table[domain.Workspace]
}

var _ domain.WorkspaceRepository = (*WorkspaceRepository)(nil)

func newWorkspaceRepository(q querier, dia dialect, log zerolog.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{t: table[domain.Workspace]{
		q:   q,
		dia: dia,
		m:   workspaceMapper{codec: metadataCodec{log: log}},
	}}
}

// Create inserts a new workspace. The owner must already exist.
func (r *WorkspaceRepository) Create(ctx context.Context, ws *domain.Workspace) (*domain.Workspace, error) {
	ok, err := existsIn(ctx, r.t.q, r.t.dia, "users", ws.OwnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewEntityNotFound(domain.EntityUser, ws.OwnerID, nil)
	}
	return r.t.create(ctx, ws)
}

// GetByID retrieves a workspace by id; absence is reported, not an error.
func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, bool, error) {
	return r.t.getByID(ctx, id)
}

// GetOwned retrieves a workspace only when ownerID owns it. The scope is a
// query predicate, so a denied workspace is indistinguishable from a
// missing one here.
func (r *WorkspaceRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Workspace, bool, error) {
	return r.t.getWhere(ctx, []cond{{"id", id}, {"owner_id", ownerID}})
}

// List returns workspaces matching the filter, ordered by id.
func (r *WorkspaceRepository) List(ctx context.Context, filter domain.WorkspaceFilter, limit, offset int) ([]*domain.Workspace, error) {
	return r.t.list(ctx, workspaceConds(filter), "", limit, offset)
}

// ListByOwner returns only workspaces owned by ownerID.
func (r *WorkspaceRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Workspace, error) {
	return r.t.list(ctx, []cond{{"owner_id", ownerID}}, "", limit, offset)
}

// Update replaces the mutable fields of an existing workspace.
func (r *WorkspaceRepository) Update(ctx context.Context, ws *domain.Workspace) (*domain.Workspace, error) {
	ok, err := existsIn(ctx, r.t.q, r.t.dia, "users", ws.OwnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewEntityNotFound(domain.EntityUser, ws.OwnerID, nil)
	}
	return r.t.update(ctx, ws)
}

// Delete removes a workspace by id. Conversations in the workspace are
// deliberately left in place: nothing cascades.
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.t.delete(ctx, id)
}

// Count returns the number of workspaces matching the filter.
func (r *WorkspaceRepository) Count(ctx context.Context, filter domain.WorkspaceFilter) (int64, error) {
	return r.t.count(ctx, workspaceConds(filter))
}

// CountByOwner returns the number of workspaces owned by ownerID.
func (r *WorkspaceRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return r.t.count(ctx, []cond{{"owner_id", ownerID}})
}

func workspaceConds(f domain.WorkspaceFilter) []cond {
	var conds []cond
	if f.OwnerID != nil {
		conds = append(conds, cond{"owner_id", *f.OwnerID})
	}
	return conds
}

// workspaceMapper converts between domain.Workspace and its workspaces row.
type workspaceMapper struct {
	codec metadataCodec
}

func (workspaceMapper) table() string { return "workspaces" }

func (workspaceMapper) entityType() string { return domain.EntityWorkspace }

func (workspaceMapper) columns() []string {
	return []string{"id", "name", "description", "owner_id", "metadata"}
}

func (workspaceMapper) id(w *domain.Workspace) string { return w.ID }

func (m workspaceMapper) values(w *domain.Workspace) ([]any, error) {
	meta, err := m.codec.encode(w.Metadata)
	if err != nil {
		return nil, err
	}
	return []any{w.ID, w.Name, w.Description, w.OwnerID, meta}, nil
}

func (m workspaceMapper) scan(sc scanner) (*domain.Workspace, error) {
	var w domain.Workspace
	var meta []byte
	if err := sc.Scan(&w.ID, &w.Name, &w.Description, &w.OwnerID, &meta); err != nil {
		return nil, err
	}
	w.Metadata = m.codec.decode(meta, domain.EntityWorkspace, w.ID)
	return &w, nil
}
