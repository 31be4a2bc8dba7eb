// Package cache memoizes dispatch results keyed by the exact
// (provider, model, system text, user text) tuple. Matching is exact only;
// there is no fuzzy or semantic lookup.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/af-corp/relay/internal/types"
)

// keySeparator joins the key fields before hashing. A control character
// keeps "ab"+"c" and "a"+"bc" from colliding.
const keySeparator = "\x1f"

// Store is the response cache consulted by the dispatch service. Get
// returns a copy already flagged as a cache hit; implementations own
// expiry. Put failures are silent: the cache is an optimization, never a
// source of dispatch errors.
type Store interface {
	Get(ctx context.Context, key string) (*types.Result, bool)
	Put(ctx context.Context, key string, res *types.Result)
}

// MakeKey derives the deterministic cache key for a dispatch. SHA-256 is
// used because collision resistance matters more than hashing speed here.
func MakeKey(provider, model, system, user string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte(keySeparator))
	h.Write([]byte(model))
	h.Write([]byte(keySeparator))
	h.Write([]byte(system))
	h.Write([]byte(keySeparator))
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))
}
