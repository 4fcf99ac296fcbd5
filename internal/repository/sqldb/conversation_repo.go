package sqldb

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// ConversationRepository implements domain.ConversationRepository over one
// transactional session. Participant ids live in the
// conversation_participants join table; its rows are part of the
// conversation entity and are written and removed with it.
type ConversationRepository struct {
	t table[domain.Conversation]
}

var _ domain.ConversationRepository = (*ConversationRepository)(nil)

func newConversationRepository(q querier, dia dialect, log zerolog.Logger) *ConversationRepository {
	return &ConversationRepository{t: table[domain.Conversation]{
		q:   q,
		dia: dia,
		m:   conversationMapper{codec: metadataCodec{log: log}},
	}}
}

// Create inserts a new conversation. The workspace and every participant
// must already exist.
func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	if err := r.ensureReferences(ctx, c); err != nil {
		return nil, err
	}
	created, err := r.t.create(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := r.replaceParticipants(ctx, c.ID, c.ParticipantIDs); err != nil {
		return nil, err
	}
	return r.attachParticipants(ctx, created)
}

// GetByID retrieves a conversation by id; absence is reported, not an error.
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, bool, error) {
	c, ok, err := r.t.getByID(ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	c, err = r.attachParticipants(ctx, c)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// List returns conversations matching the filter, ordered by id.
func (r *ConversationRepository) List(ctx context.Context, filter domain.ConversationFilter, limit, offset int) ([]*domain.Conversation, error) {
	out, err := r.t.list(ctx, conversationConds(filter), "", limit, offset)
	if err != nil {
		return nil, err
	}
	for i, c := range out {
		if out[i], err = r.attachParticipants(ctx, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListByWorkspace returns the conversations belonging to one workspace.
func (r *ConversationRepository) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]*domain.Conversation, error) {
	return r.List(ctx, domain.ConversationFilter{WorkspaceID: &workspaceID}, limit, offset)
}

// Update replaces the mutable fields of an existing conversation, including
// its full participant list.
func (r *ConversationRepository) Update(ctx context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	if err := r.ensureReferences(ctx, c); err != nil {
		return nil, err
	}
	updated, err := r.t.update(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := r.replaceParticipants(ctx, c.ID, c.ParticipantIDs); err != nil {
		return nil, err
	}
	return r.attachParticipants(ctx, updated)
}

// Delete removes a conversation and its participant rows. Messages in the
// conversation are deliberately left in place: nothing cascades.
func (r *ConversationRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.clearParticipants(ctx, id); err != nil {
		return false, err
	}
	return r.t.delete(ctx, id)
}

// Count returns the number of conversations matching the filter.
func (r *ConversationRepository) Count(ctx context.Context, filter domain.ConversationFilter) (int64, error) {
	return r.t.count(ctx, conversationConds(filter))
}

// CountByWorkspace returns the number of conversations in one workspace.
func (r *ConversationRepository) CountByWorkspace(ctx context.Context, workspaceID string) (int64, error) {
	return r.t.count(ctx, []cond{{"workspace_id", workspaceID}})
}

func (r *ConversationRepository) ensureReferences(ctx context.Context, c *domain.Conversation) error {
	ok, err := existsIn(ctx, r.t.q, r.t.dia, "workspaces", c.WorkspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewEntityNotFound(domain.EntityWorkspace, c.WorkspaceID, nil)
	}
	for _, pid := range c.ParticipantIDs {
		ok, err := existsIn(ctx, r.t.q, r.t.dia, "users", pid)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewEntityNotFound(domain.EntityUser, pid, nil)
		}
	}
	return nil
}

func (r *ConversationRepository) clearParticipants(ctx context.Context, id string) error {
	query := r.t.dia.rebind("DELETE FROM conversation_participants WHERE conversation_id = ?")
	if _, err := r.t.q.ExecContext(ctx, query, id); err != nil {
		return wrapSessionErr(r.t.dia, "clear participants", err)
	}
	return nil
}

// replaceParticipants rewrites the join rows for one conversation. seq
// preserves the caller's list order; duplicate ids collapse to their first
// occurrence.
func (r *ConversationRepository) replaceParticipants(ctx context.Context, id string, participantIDs []string) error {
	if err := r.clearParticipants(ctx, id); err != nil {
		return err
	}
	query := r.t.dia.rebind("INSERT INTO conversation_participants (conversation_id, seq, user_id) VALUES (?, ?, ?)")
	seen := make(map[string]struct{}, len(participantIDs))
	seq := 0
	for _, pid := range participantIDs {
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		if _, err := r.t.q.ExecContext(ctx, query, id, seq, pid); err != nil {
			return r.t.wrap("insert participant", err, nil)
		}
		seq++
	}
	return nil
}

func (r *ConversationRepository) attachParticipants(ctx context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	query := r.t.dia.rebind("SELECT user_id FROM conversation_participants WHERE conversation_id = ? ORDER BY seq")
	rows, err := r.t.q.QueryContext(ctx, query, c.ID)
	if err != nil {
		return nil, wrapSessionErr(r.t.dia, "load participants", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapSessionErr(r.t.dia, "scan participant", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSessionErr(r.t.dia, "load participants", err)
	}
	c.ParticipantIDs = ids
	return c, nil
}

func conversationConds(f domain.ConversationFilter) []cond {
	var conds []cond
	if f.WorkspaceID != nil {
		conds = append(conds, cond{"workspace_id", *f.WorkspaceID})
	}
	return conds
}

// conversationMapper converts between domain.Conversation and its
// conversations row. Participants are attached separately from the join
// table.
type conversationMapper struct {
	codec metadataCodec
}

func (conversationMapper) table() string { return "conversations" }

func (conversationMapper) entityType() string { return domain.EntityConversation }

func (conversationMapper) columns() []string {
	return []string{"id", "topic", "workspace_id", "metadata"}
}

func (conversationMapper) id(c *domain.Conversation) string { return c.ID }

func (m conversationMapper) values(c *domain.Conversation) ([]any, error) {
	meta, err := m.codec.encode(c.Metadata)
	if err != nil {
		return nil, err
	}
	return []any{c.ID, c.Topic, c.WorkspaceID, meta}, nil
}

func (m conversationMapper) scan(sc scanner) (*domain.Conversation, error) {
	var c domain.Conversation
	var meta []byte
	if err := sc.Scan(&c.ID, &c.Topic, &c.WorkspaceID, &meta); err != nil {
		return nil, err
	}
	c.Metadata = m.codec.decode(meta, domain.EntityConversation, c.ID)
	return &c, nil
}
