package memory

import (
	"context"
	"sync"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
)

// TapEventStore is an in-memory append-only log of tap decisions.
// It is intended for use in tests and dev environments.
type TapEventStore struct {
	mu     sync.Mutex
	events []store.TapEventRecord
}

func NewTapEventStore() *TapEventStore {
	return &TapEventStore{}
}

func (s *TapEventStore) RecordEvent(_ context.Context, rec store.TapEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, rec)
	return nil
}

// Events returns a copy of all recorded events. Test-only helper.
func (s *TapEventStore) Events() []store.TapEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.TapEventRecord, len(s.events))
	copy(out, s.events)
	return out
}
