package store

import (
	"context"
	"errors"

	"github.com/mcvillena/Gatelog/server/internal/gatelog/types"
)

// ErrIdentityNotFound is returned by Lookup for tokens that are not in
// the roster. Callers must not create any visit row in that case.
var ErrIdentityNotFound = errors.New("identity not found")

// RosterStore resolves a physical credential token to an Identity.
// The roster is read-only at request time; provisioning happens
// out-of-band.
type RosterStore interface {
	Lookup(ctx context.Context, token string) (types.Identity, error)
}
