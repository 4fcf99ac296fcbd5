// Package bulkload consumes the one-time migration collaborator: it takes a
// complete snapshot of entities by kind and inserts them through ordinary
// repository creates inside a single unit of work, so a partial snapshot
// never becomes visible.
package bulkload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// Snapshot is the complete entity dump handed over by the migration
// collaborator.
type Snapshot struct {
	Users         []*domain.User         `json:"users"`
	Workspaces    []*domain.Workspace    `json:"workspaces"`
	Conversations []*domain.Conversation `json:"conversations"`
	Messages      []*domain.Message      `json:"messages"`
}

// Stats counts the rows inserted by a successful load.
type Stats struct {
	Users         int
	Workspaces    int
	Conversations int
	Messages      int
}

// Read decodes a JSON snapshot.
func Read(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// ReadFile decodes a JSON snapshot from disk.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Load inserts the snapshot in dependency order inside one unit of work.
// Any failure rolls everything back and returns empty stats.
func Load(ctx context.Context, store domain.Store, snap *Snapshot) (Stats, error) {
	var st Stats
	err := store.WithinTx(ctx, func(repos domain.RepositoryFactory) error {
		for _, u := range snap.Users {
			if _, err := repos.Users().Create(ctx, u); err != nil {
				return fmt.Errorf("load user %s: %w", u.ID, err)
			}
			st.Users++
		}
		for _, ws := range snap.Workspaces {
			if _, err := repos.Workspaces().Create(ctx, ws); err != nil {
				return fmt.Errorf("load workspace %s: %w", ws.ID, err)
			}
			st.Workspaces++
		}
		for _, c := range snap.Conversations {
			if _, err := repos.Conversations().Create(ctx, c); err != nil {
				return fmt.Errorf("load conversation %s: %w", c.ID, err)
			}
			st.Conversations++
		}
		for _, m := range snap.Messages {
			if _, err := repos.Messages().Create(ctx, m); err != nil {
				return fmt.Errorf("load message %s: %w", m.ID, err)
			}
			st.Messages++
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}
