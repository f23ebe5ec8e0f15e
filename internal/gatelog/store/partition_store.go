package store

import (
	"context"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// PartitionStore is the read/append interface over monthly visit-record
// partitions.
//
// Load returns the partition's rows in insertion order; a partition that
// has never been written loads as an empty slice, not an error.
//
// Save overwrites the whole partition, creating parent directories as
// needed. There is no finer-grained mutation — callers serialize
// load→mutate→save per partition themselves.
//
// List returns the partition filenames present for a year (newest-first
// ordering is the caller's concern); a year with no partitions lists as
// empty, not an error.
type PartitionStore interface {
	Load(ctx context.Context, key types.PartitionKey) ([]types.VisitRecord, error)
	Save(ctx context.Context, key types.PartitionKey, rows []types.VisitRecord) error
	List(ctx context.Context, year int) ([]string, error)
}
