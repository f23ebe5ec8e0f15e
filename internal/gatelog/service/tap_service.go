package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// TapService handles one RFID tap end to end: roster lookup, partition
// load, reconcile, save, audit.
type TapService struct {
	directory  *Directory
	partitions store.PartitionStore
	events     store.TapEventStore
	policy     SessionPolicy
	locks      *PartitionLocks
	nowFn      func() time.Time
}

func NewTapService(
	dir *Directory,
	partitions store.PartitionStore,
	events store.TapEventStore,
	policy SessionPolicy,
	locks *PartitionLocks,
) *TapService {
	return &TapService{
		directory:  dir,
		partitions: partitions,
		events:     events,
		policy:     policy,
		locks:      locks,
		nowFn:      time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *TapService) WithClock(now func() time.Time) *TapService {
	s.nowFn = now
	return s
}

// Tap resolves the token, reconciles the current month's partition and
// persists it. An unregistered token returns ErrTokenNotRegistered with
// no mutation; a failed save surfaces the error and discards the
// in-memory mutation (the file is never partially written).
func (s *TapService) Tap(ctx context.Context, req types.TapRequest) (types.TapResponse, error) {
	id, err := s.directory.Lookup(ctx, req.Token)
	if err != nil {
		return types.TapResponse{}, err
	}

	now := s.nowFn()
	key := types.PartitionKeyFor(now)

	unlock := s.locks.Lock(key)
	defer unlock()

	rows, err := s.partitions.Load(ctx, key)
	if err != nil {
		return types.TapResponse{}, fmt.Errorf("load partition %s: %w", key, err)
	}

	rows, action, message := Reconcile(rows, id, now, s.policy)

	if err := s.partitions.Save(ctx, key, rows); err != nil {
		return types.TapResponse{}, fmt.Errorf("save partition %s: %w", key, err)
	}

	s.recordEvent(ctx, req.Token, id, action, message, key, now)

	return types.TapResponse{
		Action:  string(action),
		Name:    id.FirstName + " " + id.LastName,
		Time:    now.Format(types.TimeLayout),
		Message: message,
	}, nil
}

// recordEvent persists the tap decision to the audit log. Errors are
// intentionally not returned to the caller — a failed audit write should
// not stop the kiosk from showing its greeting.
func (s *TapService) recordEvent(
	ctx context.Context,
	token string,
	id types.Identity,
	action Action,
	message string,
	key types.PartitionKey,
	decidedAt time.Time,
) {
	_ = s.events.RecordEvent(ctx, store.TapEventRecord{
		EventID:   uuid.NewString(),
		Token:     token,
		IDNumber:  id.IDNumber,
		Category:  id.Category,
		Action:    string(action),
		Message:   message,
		Partition: key.String(),
		DecidedAt: decidedAt.UTC(),
	})
}
