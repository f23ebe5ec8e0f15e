package store

import (
	"context"
	"time"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// TapEventRecord captures a single tap decision for the audit log.
// It records what the reconciler decided, not the visit rows themselves —
// those live in the partition files.
type TapEventRecord struct {
	EventID   string // uuid
	Token     string
	IDNumber  string
	Category  types.Category
	Action    string // see service.Action values
	Message   string
	Partition string // YYYYMM
	DecidedAt time.Time
}

// TapEventStore persists tap decisions as an append-only audit log.
type TapEventStore interface {
	RecordEvent(ctx context.Context, rec TapEventRecord) error
}
