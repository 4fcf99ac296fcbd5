package service

import (
	"context"

	"github.com/parlohq/parlo-backend/internal/domain"
	"github.com/parlohq/parlo-backend/internal/identity"
)

// workspaceForActor resolves a workspace the actor may act on. Admins see
// every workspace; everyone else goes through the owner-scoped lookup so the
// access check is a query predicate. A scoped miss is disambiguated with an
// unscoped re-check: the workspace either does not exist (EntityNotFound) or
// exists but belongs to someone else (AccessDenied).
func workspaceForActor(ctx context.Context, repos domain.RepositoryFactory, actor identity.Identity, id string) (*domain.Workspace, error) {
	workspaces := repos.Workspaces()
	if actor.IsAdmin() {
		ws, ok, err := workspaces.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.NewEntityNotFound(domain.EntityWorkspace, id, nil)
		}
		return ws, nil
	}
	ws, ok, err := workspaces.GetOwned(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	if ok {
		return ws, nil
	}
	if _, exists, err := workspaces.GetByID(ctx, id); err != nil {
		return nil, err
	} else if exists {
		return nil, domain.NewAccessDenied(domain.EntityWorkspace, id, actor.UserID)
	}
	return nil, domain.NewEntityNotFound(domain.EntityWorkspace, id, nil)
}

// conversationForActor resolves a conversation the actor may read: admins,
// participants, and the owner of the enclosing workspace.
func conversationForActor(ctx context.Context, repos domain.RepositoryFactory, actor identity.Identity, id string) (*domain.Conversation, error) {
	conv, ok, err := repos.Conversations().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewEntityNotFound(domain.EntityConversation, id, nil)
	}
	if actor.IsAdmin() || conv.HasParticipant(actor.UserID) {
		return conv, nil
	}
	_, owns, err := repos.Workspaces().GetOwned(ctx, conv.WorkspaceID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if owns {
		return conv, nil
	}
	return nil, domain.NewAccessDenied(domain.EntityConversation, id, actor.UserID)
}
