package sqldb

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// UserRepository implements domain.UserRepository over one transactional
// session.
type UserRepository struct {
	t table[domain.User]
}

var _ domain.UserRepository = (*UserRepository)(nil)

func newUserRepository(q querier, dia dialect, log zerolog.Logger) *UserRepository {
	return &UserRepository{t: table[domain.User]{
		q:   q,
		dia: dia,
		m:   userMapper{codec: metadataCodec{log: log}},
	}}
}

// Create inserts a new user. A reused id or email fails with a duplicate
// report.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.t.create(ctx, user)
}

// GetByID retrieves a user by id; absence is reported, not an error.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, bool, error) {
	return r.t.getByID(ctx, id)
}

// GetByEmail retrieves a user by the unique email secondary key.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	return r.t.getWhere(ctx, []cond{{"email", email}})
}

// List returns users matching the filter, ordered by id.
func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter, limit, offset int) ([]*domain.User, error) {
	return r.t.list(ctx, userConds(filter), "", limit, offset)
}

// Update replaces the mutable fields of an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.t.update(ctx, user)
}

// Delete removes a user by id and reports whether a row was removed.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.t.delete(ctx, id)
}

// Count returns the number of users matching the filter.
func (r *UserRepository) Count(ctx context.Context, filter domain.UserFilter) (int64, error) {
	return r.t.count(ctx, userConds(filter))
}

func userConds(f domain.UserFilter) []cond {
	var conds []cond
	if f.Email != nil {
		conds = append(conds, cond{"email", *f.Email})
	}
	return conds
}

// userMapper converts between domain.User and its users row.
type userMapper struct {
	codec metadataCodec
}

func (userMapper) table() string { return "users" }

func (userMapper) entityType() string { return domain.EntityUser }

func (userMapper) columns() []string {
	return []string{"id", "display_name", "email", "metadata"}
}

func (userMapper) id(u *domain.User) string { return u.ID }

func (m userMapper) values(u *domain.User) ([]any, error) {
	meta, err := m.codec.encode(u.Metadata)
	if err != nil {
		return nil, err
	}
	return []any{u.ID, u.DisplayName, u.Email, meta}, nil
}

func (m userMapper) scan(sc scanner) (*domain.User, error) {
	var u domain.User
	var meta []byte
	if err := sc.Scan(&u.ID, &u.DisplayName, &u.Email, &meta); err != nil {
		return nil, err
	}
	u.Metadata = m.codec.decode(meta, domain.EntityUser, u.ID)
	return &u, nil
}
