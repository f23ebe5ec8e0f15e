package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// RosterStore is an in-memory roster keyed by credential token.
// Intended for tests and dev environments.
type RosterStore struct {
	mu         sync.RWMutex
	identities map[string]types.Identity
}

func NewRosterStore(identities []types.Identity) *RosterStore {
	m := make(map[string]types.Identity, len(identities))
	for _, id := range identities {
		tok := strings.TrimSpace(id.Token)
		if tok != "" {
			m[tok] = id
		}
	}
	return &RosterStore{identities: m}
}

func (s *RosterStore) Lookup(_ context.Context, token string) (types.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[token]
	if !ok {
		return types.Identity{}, store.ErrIdentityNotFound
	}
	return id, nil
}
