package testutil

import (
	"context"
	"sort"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// MockStore is an in-memory implementation of domain.Store for service
// tests. It applies every unit of work directly, tracking commit/rollback
// counts; transactional isolation is exercised by the sqldb integration
// tests, not here.
type MockStore struct {
	Repos     *MockRepositories
	BeginErr  error
	Commits   int
	Rollbacks int
}

// NewMockStore creates a MockStore with empty repositories.
func NewMockStore() *MockStore {
	return &MockStore{Repos: NewMockRepositories()}
}

// Begin hands out a unit of work over the shared mock repositories.
func (s *MockStore) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	if s.BeginErr != nil {
		return nil, s.BeginErr
	}
	return &MockUnitOfWork{store: s}, nil
}

// BeginRead hands out a unit of work over the shared mock repositories.
// The mock makes no read/write distinction.
func (s *MockStore) BeginRead(ctx context.Context) (domain.UnitOfWork, error) {
	return s.Begin(ctx)
}

// WithinTx runs fn against the shared mock repositories.
func (s *MockStore) WithinTx(ctx context.Context, fn func(domain.RepositoryFactory) error) error {
	uow, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = uow.Close() }()
	if err := fn(uow.Repositories()); err != nil {
		return err
	}
	return uow.Commit()
}

// WithinReadTx runs fn against the shared mock repositories.
func (s *MockStore) WithinReadTx(ctx context.Context, fn func(domain.RepositoryFactory) error) error {
	return s.WithinTx(ctx, fn)
}

// Close implements domain.Store.
func (s *MockStore) Close() error { return nil }

// MockUnitOfWork tracks outcome bookkeeping for MockStore.
type MockUnitOfWork struct {
	store *MockStore
	done  bool
}

// Repositories returns the store's shared repositories.
func (u *MockUnitOfWork) Repositories() domain.RepositoryFactory { return u.store.Repos }

// Commit marks the unit committed.
func (u *MockUnitOfWork) Commit() error {
	if u.done {
		return domain.ErrUnitOfWorkClosed
	}
	u.done = true
	u.store.Commits++
	return nil
}

// Rollback marks the unit rolled back.
func (u *MockUnitOfWork) Rollback() error {
	if u.done {
		return domain.ErrUnitOfWorkClosed
	}
	u.done = true
	u.store.Rollbacks++
	return nil
}

// Close rolls back when no outcome was decided.
func (u *MockUnitOfWork) Close() error {
	if !u.done {
		u.done = true
		u.store.Rollbacks++
	}
	return nil
}

// MockRepositories implements domain.RepositoryFactory over the mock
// repositories.
type MockRepositories struct {
	UserRepo         *MockUserRepository
	WorkspaceRepo    *MockWorkspaceRepository
	ConversationRepo *MockConversationRepository
	MessageRepo      *MockMessageRepository
}

// NewMockRepositories creates empty mock repositories.
func NewMockRepositories() *MockRepositories {
	return &MockRepositories{
		UserRepo:         NewMockUserRepository(),
		WorkspaceRepo:    NewMockWorkspaceRepository(),
		ConversationRepo: NewMockConversationRepository(),
		MessageRepo:      NewMockMessageRepository(),
	}
}

func (f *MockRepositories) Users() domain.UserRepository                 { return f.UserRepo }
func (f *MockRepositories) Workspaces() domain.WorkspaceRepository       { return f.WorkspaceRepo }
func (f *MockRepositories) Conversations() domain.ConversationRepository { return f.ConversationRepo }
func (f *MockRepositories) Messages() domain.MessageRepository           { return f.MessageRepo }

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[string]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*domain.User)}
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.ID] = cloneUser(user)
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := m.Users[user.ID]; ok {
		return nil, domain.NewDuplicateEntity(domain.EntityUser, "id", user.ID, nil)
	}
	for _, existing := range m.Users {
		if existing.Email == user.Email {
			return nil, domain.NewDuplicateEntity(domain.EntityUser, "email", user.Email, nil)
		}
	}
	m.Users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, bool, error) {
	u, ok := m.Users[id]
	if !ok {
		return nil, false, nil
	}
	return cloneUser(u), true, nil
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	for _, u := range m.Users {
		if u.Email == email {
			return cloneUser(u), true, nil
		}
	}
	return nil, false, nil
}

// List returns users matching the filter, ordered by id
func (m *MockUserRepository) List(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range m.Users {
		if filter.Email != nil && u.Email != *filter.Email {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

// Update updates an existing user
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := m.Users[user.ID]; !ok {
		return nil, domain.NewEntityNotFound(domain.EntityUser, user.ID, nil)
	}
	m.Users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

// Delete removes a user by ID
func (m *MockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.Users[id]; !ok {
		return false, nil
	}
	delete(m.Users, id)
	return true, nil
}

// Count returns the number of users matching the filter
func (m *MockUserRepository) Count(ctx context.Context, filter domain.UserFilter) (int64, error) {
	users, err := m.List(ctx, filter, 0, 0)
	return int64(len(users)), err
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	Workspaces map[string]*domain.Workspace
}

// NewMockWorkspaceRepository creates a new MockWorkspaceRepository
func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{Workspaces: make(map[string]*domain.Workspace)}
}

// AddWorkspace adds a workspace to the mock repository (helper for tests)
func (m *MockWorkspaceRepository) AddWorkspace(ws *domain.Workspace) {
	m.Workspaces[ws.ID] = cloneWorkspace(ws)
}

// Create creates a new workspace
func (m *MockWorkspaceRepository) Create(ctx context.Context, ws *domain.Workspace) (*domain.Workspace, error) {
	if _, ok := m.Workspaces[ws.ID]; ok {
		return nil, domain.NewDuplicateEntity(domain.EntityWorkspace, "id", ws.ID, nil)
	}
	m.Workspaces[ws.ID] = cloneWorkspace(ws)
	return cloneWorkspace(ws), nil
}

// GetByID retrieves a workspace by ID
func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, bool, error) {
	ws, ok := m.Workspaces[id]
	if !ok {
		return nil, false, nil
	}
	return cloneWorkspace(ws), true, nil
}

// GetOwned retrieves a workspace only when ownerID owns it
func (m *MockWorkspaceRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Workspace, bool, error) {
	ws, ok := m.Workspaces[id]
	if !ok || ws.OwnerID != ownerID {
		return nil, false, nil
	}
	return cloneWorkspace(ws), true, nil
}

// List returns workspaces matching the filter, ordered by id
func (m *MockWorkspaceRepository) List(ctx context.Context, filter domain.WorkspaceFilter, limit, offset int) ([]*domain.Workspace, error) {
	var out []*domain.Workspace
	for _, ws := range m.Workspaces {
		if filter.OwnerID != nil && ws.OwnerID != *filter.OwnerID {
			continue
		}
		out = append(out, cloneWorkspace(ws))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

// ListByOwner returns workspaces owned by ownerID
func (m *MockWorkspaceRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Workspace, error) {
	return m.List(ctx, domain.WorkspaceFilter{OwnerID: &ownerID}, limit, offset)
}

// Update updates an existing workspace
func (m *MockWorkspaceRepository) Update(ctx context.Context, ws *domain.Workspace) (*domain.Workspace, error) {
	if _, ok := m.Workspaces[ws.ID]; !ok {
		return nil, domain.NewEntityNotFound(domain.EntityWorkspace, ws.ID, nil)
	}
	m.Workspaces[ws.ID] = cloneWorkspace(ws)
	return cloneWorkspace(ws), nil
}

// Delete removes a workspace by ID
func (m *MockWorkspaceRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.Workspaces[id]; !ok {
		return false, nil
	}
	delete(m.Workspaces, id)
	return true, nil
}

// Count returns the number of workspaces matching the filter
func (m *MockWorkspaceRepository) Count(ctx context.Context, filter domain.WorkspaceFilter) (int64, error) {
	out, err := m.List(ctx, filter, 0, 0)
	return int64(len(out)), err
}

// CountByOwner returns the number of workspaces owned by ownerID
func (m *MockWorkspaceRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return m.Count(ctx, domain.WorkspaceFilter{OwnerID: &ownerID})
}

// MockConversationRepository is a mock implementation of domain.ConversationRepository
type MockConversationRepository struct {
	Conversations map[string]*domain.Conversation
}

// NewMockConversationRepository creates a new MockConversationRepository
func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{Conversations: make(map[string]*domain.Conversation)}
}

// AddConversation adds a conversation to the mock repository (helper for tests)
func (m *MockConversationRepository) AddConversation(c *domain.Conversation) {
	m.Conversations[c.ID] = cloneConversation(c)
}

// Create creates a new conversation
func (m *MockConversationRepository) Create(ctx context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	if _, ok := m.Conversations[c.ID]; ok {
		return nil, domain.NewDuplicateEntity(domain.EntityConversation, "id", c.ID, nil)
	}
	m.Conversations[c.ID] = cloneConversation(c)
	return cloneConversation(c), nil
}

// GetByID retrieves a conversation by ID
func (m *MockConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, bool, error) {
	c, ok := m.Conversations[id]
	if !ok {
		return nil, false, nil
	}
	return cloneConversation(c), true, nil
}

// List returns conversations matching the filter, ordered by id
func (m *MockConversationRepository) List(ctx context.Context, filter domain.ConversationFilter, limit, offset int) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range m.Conversations {
		if filter.WorkspaceID != nil && c.WorkspaceID != *filter.WorkspaceID {
			continue
		}
		out = append(out, cloneConversation(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

// ListByWorkspace returns conversations in one workspace
func (m *MockConversationRepository) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]*domain.Conversation, error) {
	return m.List(ctx, domain.ConversationFilter{WorkspaceID: &workspaceID}, limit, offset)
}

// Update updates an existing conversation
func (m *MockConversationRepository) Update(ctx context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	if _, ok := m.Conversations[c.ID]; !ok {
		return nil, domain.NewEntityNotFound(domain.EntityConversation, c.ID, nil)
	}
	m.Conversations[c.ID] = cloneConversation(c)
	return cloneConversation(c), nil
}

// Delete removes a conversation by ID
func (m *MockConversationRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.Conversations[id]; !ok {
		return false, nil
	}
	delete(m.Conversations, id)
	return true, nil
}

// Count returns the number of conversations matching the filter
func (m *MockConversationRepository) Count(ctx context.Context, filter domain.ConversationFilter) (int64, error) {
	out, err := m.List(ctx, filter, 0, 0)
	return int64(len(out)), err
}

// CountByWorkspace returns the number of conversations in one workspace
func (m *MockConversationRepository) CountByWorkspace(ctx context.Context, workspaceID string) (int64, error) {
	return m.Count(ctx, domain.ConversationFilter{WorkspaceID: &workspaceID})
}

// MockMessageRepository is a mock implementation of domain.MessageRepository
type MockMessageRepository struct {
	Messages map[string]*domain.Message
}

// NewMockMessageRepository creates a new MockMessageRepository
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{Messages: make(map[string]*domain.Message)}
}

// AddMessage adds a message to the mock repository (helper for tests)
func (m *MockMessageRepository) AddMessage(msg *domain.Message) {
	m.Messages[msg.ID] = cloneMessage(msg)
}

// Create creates a new message
func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if _, ok := m.Messages[msg.ID]; ok {
		return nil, domain.NewDuplicateEntity(domain.EntityMessage, "id", msg.ID, nil)
	}
	m.Messages[msg.ID] = cloneMessage(msg)
	return cloneMessage(msg), nil
}

// GetByID retrieves a message by ID
func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, bool, error) {
	msg, ok := m.Messages[id]
	if !ok {
		return nil, false, nil
	}
	return cloneMessage(msg), true, nil
}

// List returns messages matching the filter, ordered by id
func (m *MockMessageRepository) List(ctx context.Context, filter domain.MessageFilter, limit, offset int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, msg := range m.Messages {
		if filter.ConversationID != nil && msg.ConversationID != *filter.ConversationID {
			continue
		}
		if filter.SenderID != nil && msg.SenderID != *filter.SenderID {
			continue
		}
		out = append(out, cloneMessage(msg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

// ListByConversation returns messages ordered by ascending send time
func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	out, err := m.List(ctx, domain.MessageFilter{ConversationID: &conversationID}, 0, 0)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SentAt.Before(out[j].SentAt)
	})
	return paginate(out, limit, offset), nil
}

// Update updates an existing message
func (m *MockMessageRepository) Update(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if _, ok := m.Messages[msg.ID]; !ok {
		return nil, domain.NewEntityNotFound(domain.EntityMessage, msg.ID, nil)
	}
	m.Messages[msg.ID] = cloneMessage(msg)
	return cloneMessage(msg), nil
}

// Delete removes a message by ID
func (m *MockMessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := m.Messages[id]; !ok {
		return false, nil
	}
	delete(m.Messages, id)
	return true, nil
}

// Count returns the number of messages matching the filter
func (m *MockMessageRepository) Count(ctx context.Context, filter domain.MessageFilter) (int64, error) {
	out, err := m.List(ctx, filter, 0, 0)
	return int64(len(out)), err
}

// CountByConversation returns the number of messages in one conversation
func (m *MockMessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	return m.Count(ctx, domain.MessageFilter{ConversationID: &conversationID})
}

// Helper functions

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.Metadata = u.Metadata.Clone()
	return &out
}

func cloneWorkspace(ws *domain.Workspace) *domain.Workspace {
	out := *ws
	out.Metadata = ws.Metadata.Clone()
	return &out
}

func cloneConversation(c *domain.Conversation) *domain.Conversation {
	out := *c
	out.ParticipantIDs = append([]string(nil), c.ParticipantIDs...)
	out.Metadata = c.Metadata.Clone()
	return &out
}

func cloneMessage(msg *domain.Message) *domain.Message {
	out := *msg
	out.Metadata = msg.Metadata.Clone()
	return &out
}
