package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dalemusser/eventhub/internal/app/system/identity"
)

// Verifier maps tokens to identities; unknown tokens are invalid.
type Verifier struct {
	mu  sync.Mutex
	ids map[string]identity.Identity
	err error

	calls atomic.Int32
}

// NewVerifier returns a Verifier that accepts the given tokens.
func NewVerifier(ids map[string]identity.Identity) *Verifier {
	cp := make(map[string]identity.Identity, len(ids))
	for k, v := range ids {
		cp[k] = v
	}
	return &Verifier{ids: cp}
}

// Fail makes every later call return err. Pass nil to recover.
func (v *Verifier) Fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
}

// Calls returns how many times Verify ran.
func (v *Verifier) Calls() int { return int(v.calls.Load()) }

func (v *Verifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	v.calls.Add(1)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return identity.Identity{}, v.err
	}
	id, ok := v.ids[token]
	if !ok {
		return identity.Identity{}, identity.ErrTokenInvalid
	}
	return id, nil
}
