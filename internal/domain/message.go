package domain

import (
	"context"
	"time"
)

// Message represents one message posted to a conversation. SentAt is stored
// at microsecond precision and is the stable sort key for conversation
// history.
type Message struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	SenderID       string    `json:"senderId"`
	ConversationID string    `json:"conversationId"`
	SentAt         time.Time `json:"sentAt"`
	Metadata       Metadata  `json:"metadata"`
}

// MessageFilter narrows List and Count to rows matching every set field.
type MessageFilter struct {
	ConversationID *string
	SenderID       *string
}

// MessageRepository defines the interface for message persistence
// operations. ListByConversation orders by ascending SentAt with the
// message ID as tiebreak.
type MessageRepository interface {
	Create(ctx context.Context, message *Message) (*Message, error)
	GetByID(ctx context.Context, id string) (*Message, bool, error)
	List(ctx context.Context, filter MessageFilter, limit, offset int) ([]*Message, error)
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*Message, error)
	Update(ctx context.Context, message *Message) (*Message, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter MessageFilter) (int64, error)
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
}
