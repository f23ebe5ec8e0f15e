package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// PartitionStore keeps monthly partitions in a map. Intended for tests
// and dev environments; the csvfile store is the system of record.
type PartitionStore struct {
	mu         sync.RWMutex
	partitions map[types.PartitionKey][]types.VisitRecord

	// failing partitions simulate unreadable files; Load returns an error
	// for them. Test-only helper.
	failing map[types.PartitionKey]error
}

func NewPartitionStore() *PartitionStore {
	return &PartitionStore{
		partitions: make(map[types.PartitionKey][]types.VisitRecord),
		failing:    make(map[types.PartitionKey]error),
	}
}

func (s *PartitionStore) Load(_ context.Context, key types.PartitionKey) ([]types.VisitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, ok := s.failing[key]; ok {
		return nil, err
	}
	rows := s.partitions[key]
	out := make([]types.VisitRecord, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *PartitionStore) Save(_ context.Context, key types.PartitionKey, rows []types.VisitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]types.VisitRecord, len(rows))
	copy(cp, rows)
	s.partitions[key] = cp
	return nil
}

func (s *PartitionStore) List(_ context.Context, year int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for k := range s.partitions {
		if k.Year == year {
			names = append(names, k.FileName())
		}
	}
	for k := range s.failing {
		if k.Year == year {
			names = append(names, k.FileName())
		}
	}
	sort.Strings(names)
	return names, nil
}

// FailWith marks a partition as unloadable. Test-only helper.
func (s *PartitionStore) FailWith(key types.PartitionKey, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[key] = err
}

// Rows returns a copy of a partition's rows. Test-only helper.
func (s *PartitionStore) Rows(key types.PartitionKey) []types.VisitRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.partitions[key]
	out := make([]types.VisitRecord, len(rows))
	copy(out, rows)
	return out
}
