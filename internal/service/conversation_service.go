package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/parlohq/parlo-backend/internal/domain"
	"github.com/parlohq/parlo-backend/internal/identity"
)

// ConversationService handles conversation-related business logic.
type ConversationService struct {
	store domain.Store
}

// NewConversationService creates a new ConversationService
func NewConversationService(store domain.Store) *ConversationService {
	return &ConversationService{store: store}
}

// StartConversationInput carries the fields for a new conversation. The
// actor is always added to the participant list.
type StartConversationInput struct {
	ID             string
	Topic          string
	WorkspaceID    string
	ParticipantIDs []string
	Metadata       domain.Metadata
}

// Start creates a conversation in a workspace the actor may act on.
func (s *ConversationService) Start(ctx context.Context, actor identity.Identity, in StartConversationInput) (*domain.Conversation, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	participants := in.ParticipantIDs
	if !containsID(participants, actor.UserID) {
		participants = append([]string{actor.UserID}, participants...)
	}
	var created *domain.Conversation
	err := s.store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		if _, err := workspaceForActor(ctx, repos, actor, in.WorkspaceID); err != nil {
			return err
		}
		conv, err := repos.Conversations().Create(ctx, &domain.Conversation{
			ID:             id,
			Topic:          in.Topic,
			WorkspaceID:    in.WorkspaceID,
			ParticipantIDs: participants,
			Metadata:       in.Metadata,
		})
		created = conv
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get retrieves a conversation the actor may read.
func (s *ConversationService) Get(ctx context.Context, actor identity.Identity, id string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		var err error
		conv, err = conversationForActor(ctx, repos, actor, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// ListByWorkspace returns the conversations of a workspace the actor may
// act on.
func (s *ConversationService) ListByWorkspace(ctx context.Context, actor identity.Identity, workspaceID string, limit, offset int) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		if _, err := workspaceForActor(ctx, repos, actor, workspaceID); err != nil {
			return err
		}
		var err error
		out, err = repos.Conversations().ListByWorkspace(ctx, workspaceID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountByWorkspace returns the number of conversations in a workspace the
// actor may act on.
func (s *ConversationService) CountByWorkspace(ctx context.Context, actor identity.Identity, workspaceID string) (int64, error) {
	var n int64
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		if _, err := workspaceForActor(ctx, repos, actor, workspaceID); err != nil {
			return err
		}
		var err error
		n, err = repos.Conversations().CountByWorkspace(ctx, workspaceID)
		return err
	})
	return n, err
}

// AddParticipant appends a user to a conversation the actor may read.
func (s *ConversationService) AddParticipant(ctx context.Context, actor identity.Identity, conversationID, userID string) (*domain.Conversation, error) {
	var updated *domain.Conversation
	err := s.store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		conv, err := conversationForActor(ctx, repos, actor, conversationID)
		if err != nil {
			return err
		}
		if conv.HasParticipant(userID) {
			updated = conv
			return nil
		}
		conv.ParticipantIDs = append(conv.ParticipantIDs, userID)
		updated, err = repos.Conversations().Update(ctx, conv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
