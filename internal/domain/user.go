package domain

import "context"

// User represents an account in the system. The ID is assigned by the
// caller at creation time, never by the store.
type User struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	Metadata    Metadata `json:"metadata"`
}

// UserFilter narrows List and Count to rows matching every set field.
// Nil fields do not constrain the query.
type UserFilter struct {
	Email *string
}

// UserRepository defines the interface for user persistence operations.
// Lookups report absence with a false second return, not an error.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, bool, error)
	GetByEmail(ctx context.Context, email string) (*User, bool, error)
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
}
