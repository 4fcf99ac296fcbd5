package sqldb

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// MessageRepository implements domain.MessageRepository over one
// transactional session.
type MessageRepository struct {
	t table[domain.Message]
}

var _ domain.MessageRepository = (*MessageRepository)(nil)

func newMessageRepository(q querier, dia dialect, log zerolog.Logger) *MessageRepository {
	return &MessageRepository{t: table[domain.Message]{
		q:   q,
		dia: dia,
		m:   messageMapper{codec: metadataCodec{log: log}},
	}}
}

// Create inserts a new message. The sender and conversation must already
// exist.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	ok, err := existsIn(ctx, r.t.q, r.t.dia, "users", msg.SenderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewEntityNotFound(domain.EntityUser, msg.SenderID, nil)
	}
	ok, err = existsIn(ctx, r.t.q, r.t.dia, "conversations", msg.ConversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewEntityNotFound(domain.EntityConversation, msg.ConversationID, nil)
	}
	return r.t.create(ctx, msg)
}

// GetByID retrieves a message by id; absence is reported, not an error.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, bool, error) {
	return r.t.getByID(ctx, id)
}

// List returns messages matching the filter, ordered by id.
func (r *MessageRepository) List(ctx context.Context, filter domain.MessageFilter, limit, offset int) ([]*domain.Message, error) {
	return r.t.list(ctx, messageConds(filter), "", limit, offset)
}

// ListByConversation returns a conversation's messages by ascending send
// time regardless of insertion order, with the id as tiebreak for a stable
// sort.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	return r.t.list(ctx, []cond{{"conversation_id", conversationID}}, "sent_at ASC, id ASC", limit, offset)
}

// Update replaces the mutable fields of an existing message.
func (r *MessageRepository) Update(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	return r.t.update(ctx, msg)
}

// Delete removes a message by id and reports whether a row was removed.
func (r *MessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.t.delete(ctx, id)
}

// Count returns the number of messages matching the filter.
func (r *MessageRepository) Count(ctx context.Context, filter domain.MessageFilter) (int64, error) {
	return r.t.count(ctx, messageConds(filter))
}

// CountByConversation returns the number of messages in one conversation.
func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	return r.t.count(ctx, []cond{{"conversation_id", conversationID}})
}

func messageConds(f domain.MessageFilter) []cond {
	var conds []cond
	if f.ConversationID != nil {
		conds = append(conds, cond{"conversation_id", *f.ConversationID})
	}
	if f.SenderID != nil {
		conds = append(conds, cond{"sender_id", *f.SenderID})
	}
	return conds
}

// messageMapper converts between domain.Message and its messages row. Send
// times persist as unix microseconds, the portable totally-ordered form
// both engines sort natively.
type messageMapper struct {
	codec metadataCodec
}

func (messageMapper) table() string { return "messages" }

func (messageMapper) entityType() string { return domain.EntityMessage }

func (messageMapper) columns() []string {
	return []string{"id", "content", "sender_id", "conversation_id", "sent_at", "metadata"}
}

func (messageMapper) id(msg *domain.Message) string { return msg.ID }

func (m messageMapper) values(msg *domain.Message) ([]any, error) {
	meta, err := m.codec.encode(msg.Metadata)
	if err != nil {
		return nil, err
	}
	return []any{msg.ID, msg.Content, msg.SenderID, msg.ConversationID, msg.SentAt.UTC().UnixMicro(), meta}, nil
}

func (m messageMapper) scan(sc scanner) (*domain.Message, error) {
	var msg domain.Message
	var sentAt int64
	var meta []byte
	if err := sc.Scan(&msg.ID, &msg.Content, &msg.SenderID, &msg.ConversationID, &sentAt, &meta); err != nil {
		return nil, err
	}
	msg.SentAt = time.UnixMicro(sentAt).UTC()
	msg.Metadata = m.codec.decode(meta, domain.EntityMessage, msg.ID)
	return &msg, nil
}
