package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/store"
	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

var (
	ErrInvalidToken       = errors.New("token is required")
	ErrTokenNotRegistered = errors.New("card not registered")
)

// Directory fronts the roster store: it normalizes tokens and maps
// store-level not-found onto the service error taxonomy.
type Directory struct {
	roster store.RosterStore
}

func NewDirectory(roster store.RosterStore) *Directory {
	return &Directory{roster: roster}
}

func (d *Directory) Lookup(ctx context.Context, token string) (types.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return types.Identity{}, ErrInvalidToken
	}

	id, err := d.roster.Lookup(ctx, token)
	if errors.Is(err, store.ErrIdentityNotFound) {
		return types.Identity{}, ErrTokenNotRegistered
	}
	if err != nil {
		return types.Identity{}, err
	}
	return id, nil
}
