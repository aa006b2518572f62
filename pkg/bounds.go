package cache

// bounds.go re-exports the fixed interface-contract bounds from
// internal/arena (spec §6) so callers of this package never need to import
// the internal package directly. Mirrors the teacher's EjectReason alias
// pattern in pkg/config.go.

import "github.com/Voskan/ttlarena/internal/arena"

const (
	// MaxKeyLen is the largest key accepted by Set (spec §3, §6).
	MaxKeyLen = arena.MaxKeyLen
	// MaxDataLen is the largest value accepted by Set (spec §3, §6).
	MaxDataLen = arena.MaxDataLen
	// MinCacheSize is the smallest arena the cache will allocate.
	MinCacheSize = arena.MinCacheSize
	// MaxCacheSize is the largest arena the cache will allocate or resize to.
	MaxCacheSize = arena.MaxCacheSize
	// MaxTTLSeconds is the TTL ceiling; longer TTLs are clamped on insertion.
	MaxTTLSeconds = arena.MaxTTLSeconds
	// MaxChainSteps bounds the work a single Get can spend walking a
	// collision chain before reporting a miss.
	MaxChainSteps = arena.MaxChainSteps
)
