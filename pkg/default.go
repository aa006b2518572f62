package cache

// default.go implements the process-wide convenience facade named in
// spec §1 ("out of scope: the process-wide convenience facade exposing a
// single default cache instance") and specified in spec §6 ("A companion
// default-instance facade ... provides process-wide get/set/init/set_options
// operating on a single implicit handle; it also exposes a cumulative
// motion counter").
//
// The underlying Cache is single-threaded (spec §5): this facade is what
// supplies the "mutual-exclusion discipline that covers the entire duration
// of a get" that spec §5 requires of any multi-threaded host. It follows the
// teacher's pkg/loader.go pattern for the one operation that benefits from
// more than a mutex — GetOrLoad — by de-duplicating concurrent misses for
// the same key with golang.org/x/sync/singleflight, exactly as the
// teacher's loaderGroup does.
//
// © 2025 arena-cache authors. MIT License.

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Voskan/ttlarena/internal/unsafehelpers"
)

var (
	defaultMu    sync.Mutex
	defaultCache *Cache
	defaultGroup singleflight.Group
)

// LoaderFunc produces a value when GetOrLoad misses. It must not call back
// into this package's default-instance functions, or it will deadlock
// against defaultMu.
type LoaderFunc func(ctx context.Context, key []byte) (data []byte, ttl uint32, err error)

// InitDefault initializes the process-wide default cache. Safe to call
// again later to reinitialize it (spec §4.6's reinit semantics apply).
func InitDefault(cachesize uint32, opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCache == nil {
		defaultCache = &Cache{}
	}
	return defaultCache.Init(cachesize, opts...)
}

// DestroyDefault releases the process-wide default cache, if any.
func DestroyDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCache != nil {
		defaultCache.Destroy()
		defaultCache = nil
	}
}

// Get reads from the default cache. Returns a miss if InitDefault has not
// been called.
//
// Cache.Get's returned slice is a borrow into the arena buffer, valid only
// until the next mutating call (spec §5). Since defaultMu is the only thing
// standing between this borrow and a concurrent Set/InitDefault rewriting
// that same arena region, the bytes must be copied out before the lock is
// released — mirroring the teacher's shard.get, which dereferences the
// value out of the arena before giving it up to the caller.
func Get(key []byte) (value []byte, remainingTTL int64, ok bool) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCache == nil {
		return nil, 0, false
	}
	v, ttl, hit := defaultCache.Get(key)
	if !hit {
		return nil, 0, false
	}
	return append([]byte(nil), v...), ttl, true
}

// Set writes to the default cache. A no-op if InitDefault has not been
// called.
func Set(key, data []byte, ttl uint32) {
	c := currentDefault()
	if c == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	c.Set(key, data, ttl)
}

// SetOptions replaces the default cache's Options wholesale — see
// Cache.SetOptions's documentation on why this is not a partial update
// (spec §9 Open Question).
func SetOptions(opts ...Option) error {
	c := currentDefault()
	if c == nil {
		return ErrInvalidCacheSize
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return c.SetOptions(opts...)
}

// Motion returns the default cache's cumulative bytes-written counter
// (spec §6).
func Motion() uint64 {
	c := currentDefault()
	if c == nil {
		return 0
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return c.Motion()
}

// GetOrLoad reads the default cache, falling through to loader on a miss.
// Concurrent misses for the same key are coalesced via singleflight so that
// only one loader call executes; every waiter receives its result, matching
// the teacher's loaderGroup.load semantics.
func GetOrLoad(ctx context.Context, key []byte, loader LoaderFunc) ([]byte, error) {
	if v, _, ok := Get(key); ok {
		return v, nil
	}

	k := unsafehelpers.BytesToString(key)
	res, err, _ := defaultGroup.Do(k, func() (any, error) {
		data, ttl, err := loader(ctx, key)
		if err != nil {
			return nil, err
		}
		Set(key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

func currentDefault() *Cache {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultCache
}
