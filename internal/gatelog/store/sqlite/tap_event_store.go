package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/mcvillena/Gatelog/server/internal/db"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
)

// TapEventStore is the sqlite-backed append-only audit of tap decisions.
type TapEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewTapEventStore(db *sql.DB, writer *dbpkg.Worker) *TapEventStore {
	return &TapEventStore{db: db, writer: writer}
}

func (s *TapEventStore) RecordEvent(ctx context.Context, rec store.TapEventRecord) error {
	if rec.EventID == "" {
		rec.EventID = uuid.NewString()
	}
	if rec.DecidedAt.IsZero() {
		rec.DecidedAt = time.Now().UTC()
	}
	decidedMs := rec.DecidedAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO tap_events(
  event_id, token, id_number, category, action, message, partition_key, decided_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.EventID, rec.Token, rec.IDNumber, string(rec.Category),
			rec.Action, rec.Message, rec.Partition, decidedMs,
		); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		return nil
	})
}
