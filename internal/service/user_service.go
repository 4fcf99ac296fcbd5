package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/parlohq/parlo-backend/internal/domain"
	"github.com/parlohq/parlo-backend/internal/identity"
)

// UserService handles user-related business logic. Every method runs inside
// exactly one unit of work.
type UserService struct {
	store domain.Store
}

// NewUserService creates a new UserService
func NewUserService(store domain.Store) *UserService {
	return &UserService{store: store}
}

// RegisterUserInput carries the fields for a new user. An empty ID is
// defaulted to a fresh UUID.
type RegisterUserInput struct {
	ID          string
	DisplayName string
	Email       string
	Metadata    domain.Metadata
}

// Register creates a new user. A taken email surfaces as a duplicate-entity
// error.
func (s *UserService) Register(ctx context.Context, in RegisterUserInput) (*domain.User, error) {
	if in.Email == "" {
		return nil, domain.ErrEmailRequired
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	var created *domain.User
	err := s.store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		u, err := repos.Users().Create(ctx, &domain.User{
			ID:          id,
			DisplayName: in.DisplayName,
			Email:       in.Email,
			Metadata:    in.Metadata,
		})
		created = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		u, ok, err := repos.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewEntityNotFound(domain.EntityUser, id, nil)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by the unique email key.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		u, ok, err := repos.Users().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewEntityNotFound(domain.EntityUser, email, nil)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	ID          string
	DisplayName string
	Email       string
	Metadata    domain.Metadata
}

// UpdateProfile replaces a user's profile fields. Actors may update
// themselves; admins may update anyone.
func (s *UserService) UpdateProfile(ctx context.Context, actor identity.Identity, in UpdateProfileInput) (*domain.User, error) {
	if in.Email == "" {
		return nil, domain.ErrEmailRequired
	}
	if actor.UserID != in.ID && !actor.IsAdmin() {
		return nil, domain.NewAccessDenied(domain.EntityUser, in.ID, actor.UserID)
	}
	var updated *domain.User
	err := s.store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		u, err := repos.Users().Update(ctx, &domain.User{
			ID:          in.ID,
			DisplayName: in.DisplayName,
			Email:       in.Email,
			Metadata:    in.Metadata,
		})
		updated = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// List returns a page of users ordered by id.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	var users []*domain.User
	err := s.store.WithinReadTx(ctx, func(repos domain.RepositoryFactory) error {
		var err error
		users, err = repos.Users().List(ctx, domain.UserFilter{}, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
