package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parlohq/parlo-backend/internal/domain"
	"github.com/parlohq/parlo-backend/internal/identity"
)

// MessageService handles message-related business logic. Posting and
// reading require conversation participation; a non-participant is denied,
// not told the conversation is missing.
type MessageService struct {
	store domain.Store
}

// NewMessageService creates a new MessageService
func NewMessageService(store domain.Store) *MessageService {
	return &MessageService{store: store}
}

// PostMessageInput carries the fields for a new message. The sender is
// always the acting user; a zero SentAt is defaulted to the current time.
type PostMessageInput struct {
	ID             string
	ConversationID string
	Content        string
	SentAt         time.Time
	Metadata       domain.Metadata
}

// Post appends a message to a conversation the actor participates in.
func (s *MessageService) Post(ctx context.Context, actor identity.Identity, in PostMessageInput) (*domain.Message, error) {
	if in.Content == "" {
		return nil, domain.ErrContentRequired
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	sentAt := in.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}
	var created *domain.Message
	err := s.store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		conv, ok, err := repos.Conversations().GetByID(ctx, in.ConversationID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewEntityNotFound(domain.EntityConversation, in.ConversationID, nil)
		}
		if !actor.IsAdmin() && !conv.HasParticipant(actor.UserID) {
			return domain.NewAccessDenied(domain.EntityConversation, in.ConversationID, actor.UserID)
		}
		created, err = repos.Messages().Create(ctx, &domain.Message{
			ID:             id,
			Content:        in.Content,
			SenderID:       actor.UserID,
			ConversationID: in.ConversationID,
			SentAt:         sentAt,
			Metadata:       in.Metadata,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListByConversation returns a conversation's history in ascending send
// order, for actors that may read it.
func (s *MessageService) ListByConversation(ctx context.Context, actor identity.Identity, conversationID string, limit, offset int) ([]*domain.Message, error) {
	var out []*domain.Message
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		if _, err := conversationForActor(ctx, repos, actor, conversationID); err != nil {
			return err
		}
		var err error
		out, err = repos.Messages().ListByConversation(ctx, conversationID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountByConversation returns the message count of a conversation the actor
// may read.
func (s *MessageService) CountByConversation(ctx context.Context, actor identity.Identity, conversationID string) (int64, error) {
	var n int64
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		if _, err := conversationForActor(ctx, repos, actor, conversationID); err != nil {
			return err
		}
		var err error
		n, err = repos.Messages().CountByConversation(ctx, conversationID)
		return err
	})
	return n, err
}
