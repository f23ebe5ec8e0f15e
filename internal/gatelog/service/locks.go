package service

import (
	"sync"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// PartitionLocks serializes load→mutate→save sequences per partition.
// Partition saves are whole-file overwrites, so two concurrent writers to
// the same month would otherwise lose one update. The lock is in-process
// only, which is enough for a single-server deployment. One instance is
// shared by everything that writes partitions (taps, form entries, the
// sweeper).
type PartitionLocks struct {
	mu    sync.Mutex
	locks map[types.PartitionKey]*sync.Mutex
}

func NewPartitionLocks() *PartitionLocks {
	return &PartitionLocks{locks: make(map[types.PartitionKey]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
// The caller must call the returned unlock function.
func (p *PartitionLocks) Lock(key types.PartitionKey) (unlock func()) {
	p.mu.Lock()
	m, ok := p.locks[key]
	if !ok {
		m = &sync.Mutex{}
		p.locks[key] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}
