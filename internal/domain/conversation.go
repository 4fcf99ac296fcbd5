package domain

import "context"

// Conversation represents a message thread inside a workspace.
type Conversation struct {
	ID             string   `json:"id"`
	Topic          string   `json:"topic"`
	WorkspaceID    string   `json:"workspaceId"`
	ParticipantIDs []string `json:"participantIds"`
	Metadata       Metadata `json:"metadata"`
}

// HasParticipant reports whether userID is on the participant list.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ConversationFilter narrows List and Count to rows matching every set field.
type ConversationFilter struct {
	WorkspaceID *string
}

// ConversationRepository defines the interface for conversation persistence
// operations.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *Conversation) (*Conversation, error)
	GetByID(ctx context.Context, id string) (*Conversation, bool, error)
	List(ctx context.Context, filter ConversationFilter, limit, offset int) ([]*Conversation, error)
	ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]*Conversation, error)
	Update(ctx context.Context, conversation *Conversation) (*Conversation, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter ConversationFilter) (int64, error)
	CountByWorkspace(ctx context.Context, workspaceID string) (int64, error)
}
