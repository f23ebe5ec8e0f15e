package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/mcvillena/Gatelog/server/internal/db"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// RosterStore is the sqlite-backed roster. Lookups hit the roster table
// directly; writes (imports, seeding) go through the serialized writer.
type RosterStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewRosterStore(db *sql.DB, writer *dbpkg.Worker) *RosterStore {
	return &RosterStore{db: db, writer: writer}
}

func (s *RosterStore) Lookup(ctx context.Context, token string) (types.Identity, error) {
	var id types.Identity
	var category string
	err := s.db.QueryRowContext(ctx, `
SELECT token, id_number, last_name, first_name, category, group_name
FROM roster WHERE token = ?;
`, token).Scan(&id.Token, &id.IDNumber, &id.LastName, &id.FirstName, &category, &id.Group)
	if err == sql.ErrNoRows {
		return types.Identity{}, store.ErrIdentityNotFound
	}
	if err != nil {
		return types.Identity{}, fmt.Errorf("roster lookup: %w", err)
	}
	id.Category = types.Category(category)
	return id, nil
}

// Import upserts identities into the roster, e.g. from a provisioning
// CSV. Existing tokens are overwritten; nothing is deleted.
func (s *RosterStore) Import(ctx context.Context, identities []types.Identity) error {
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, id := range identities {
			token := strings.TrimSpace(id.Token)
			if token == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO roster(token, id_number, last_name, first_name, category, group_name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(token) DO UPDATE SET
  id_number = excluded.id_number,
  last_name = excluded.last_name,
  first_name = excluded.first_name,
  category = excluded.category,
  group_name = excluded.group_name,
  updated_at_ms = excluded.updated_at_ms;
`, token, id.IDNumber, id.LastName, id.FirstName, string(id.Category), id.Group, nowMs, nowMs); err != nil {
				return fmt.Errorf("import roster %s: %w", token, err)
			}
		}
		return nil
	})
}
