// Package cache implements the arena-backed, fixed-budget, TTL cache over
// opaque byte-string keys and values described by the specification: a
// single contiguous byte buffer partitioned into a hash index and two entry
// regions, FIFO eviction driven by buffer rotation, and an adaptive resize
// controller that grows or shrinks the arena to hit a target cycle time.
//
// Cache itself is single-threaded: like the teacher's individual shard, it
// assumes exclusive access for the full duration of any call, including use
// of a value slice returned by Get (spec §5). Hosts that need concurrent
// access should either serialize calls externally or use the package-level
// default-instance facade in default.go, which does exactly that.
//
// © 2025 arena-cache authors. MIT License.
package cache

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Voskan/ttlarena/internal/arena"
	"github.com/Voskan/ttlarena/internal/cyclectl"
	"github.com/Voskan/ttlarena/internal/genring"
)

var (
	// ErrInvalidCacheSize is returned by New/Init when cachesize is zero.
	ErrInvalidCacheSize = errors.New("cache: cachesize must be > 0")
)

// Cache binds the arena, its cycle controller and its configuration
// (spec §3's Cache object, component 6).
type Cache struct {
	arena   *arena.Arena
	ctl     *cyclectl.Controller
	opts    Options
	metrics metricsSink
	motion  uint64
}

// New allocates and initializes a Cache at the given size (clamped into
// [MinCacheSize, MaxCacheSize]).
func New(cachesize uint32, opts ...Option) (*Cache, error) {
	c := &Cache{}
	if err := c.Init(cachesize, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Init (re)initializes the cache: allocates a new buffer of clamped size
// first, so a failing allocation leaves any prior state untouched, then
// installs it along with the given options (spec §4.6). All prior entries
// are discarded.
func (c *Cache) Init(cachesize uint32, opts ...Option) error {
	if cachesize == 0 {
		return ErrInvalidCacheSize
	}
	o, err := applyOptions(opts)
	if err != nil {
		return err
	}
	a, err := arena.Init(cachesize)
	if err != nil {
		return err
	}

	c.arena = a
	c.opts = o
	c.motion = 0
	c.metrics = newMetricsSink(o.registry)

	wireFatalLogging(o.logger)

	c.ctl = cyclectl.New(o.targetCycleTime, o.allowResize, o.resizeCallback, c.onResize, o.logger)
	c.ctl.Start(o.clock.Now())

	c.metrics.setArenaBytes(c.arena.Size)
	return nil
}

// Destroy releases the cache's buffer. The Cache must not be used again
// without a subsequent Init.
func (c *Cache) Destroy() {
	c.arena = nil
	c.ctl = nil
}

// Get reads the clock and delegates to GetAt.
func (c *Cache) Get(key []byte) (value []byte, remainingTTL int64, ok bool) {
	if c.arena == nil {
		return nil, 0, false
	}
	return c.GetAt(key, c.opts.clock.Now())
}

// GetAt looks up key using now as the current time (spec §6's clock_hint).
// It never mutates the cache. A caller-input violation — an oversized key,
// or a call before Init — is reported as a silent miss (spec §7).
func (c *Cache) GetAt(key []byte, now int64) (value []byte, remainingTTL int64, ok bool) {
	if c.arena == nil {
		return nil, 0, false
	}
	if len(key) > MaxKeyLen {
		c.bumpMiss()
		return nil, 0, false
	}
	val, ttl, hit := genring.Lookup(c.arena, key, now)
	if hit {
		c.metrics.incHit()
		return val, ttl, true
	}
	c.bumpMiss()
	return nil, 0, false
}

// Set reads the clock and delegates to SetAt.
func (c *Cache) Set(key, data []byte, ttl uint32) {
	if c.arena == nil {
		return
	}
	c.SetAt(key, data, ttl, c.opts.clock.Now())
}

// SetAt inserts (key, data, ttl) using now as the current time. TTLs above
// MaxTTLSeconds are clamped; keys or values over the size bounds, or a call
// before Init, are silent no-ops (spec §4.3, §7).
func (c *Cache) SetAt(key, data []byte, ttl uint32, now int64) {
	if c.arena == nil || len(key) > MaxKeyLen || len(data) > MaxDataLen {
		return
	}
	if ttl > MaxTTLSeconds {
		ttl = MaxTTLSeconds
	}

	adapter := rotationAdapter{c: c}
	if genring.Insert(&c.arena, adapter, key, data, ttl, now) {
		entrylen := uint64(uint32(len(key)) + uint32(len(data)) + 20)
		c.motion += entrylen
		c.metrics.addMotion(entrylen)
	}
}

// Motion returns the cumulative number of bytes written to the arena over
// the cache's lifetime (spec §3).
func (c *Cache) Motion() uint64 { return c.motion }

// SetOptions replaces the cache's Options wholesale (spec §9 Open
// Question): it is not a partial update. The arena and its contents are
// left untouched; only the cycle controller's tunables and the clock/logger
// take effect starting with the next operation.
func (c *Cache) SetOptions(opts ...Option) error {
	o, err := applyOptions(opts)
	if err != nil {
		return err
	}
	c.opts = o
	c.metrics = newMetricsSink(o.registry)
	wireFatalLogging(o.logger)
	if c.ctl != nil {
		c.ctl.Reconfigure(o.targetCycleTime, o.allowResize, o.resizeCallback, c.onResize, o.logger)
	}
	return nil
}

// Stats is an introspection snapshot consumed by cmd/arena-cache-inspect and
// examples/basic's debug endpoint. It is pure observability, not part of the
// storage algorithm.
type Stats struct {
	Size    uint32
	Hsize   uint32
	Writer  uint32
	Oldest  uint32
	Unused  uint32
	Motion  uint64
	TTL     TTLStats
	Updated time.Time
}

// Snapshot returns the current Stats. Safe to call at any time; returns the
// zero value if the cache has not been initialized.
func (c *Cache) Snapshot() Stats {
	if c.arena == nil {
		return Stats{}
	}
	return Stats{
		Size:    c.arena.Size,
		Hsize:   c.arena.Hsize,
		Writer:  c.arena.Writer,
		Oldest:  c.arena.Oldest,
		Unused:  c.arena.Unused,
		Motion:  c.motion,
		TTL:     c.ctl.Stats(),
		Updated: time.Unix(c.opts.clock.Now(), 0),
	}
}

func (c *Cache) bumpMiss() { c.metrics.incMiss() }

func (c *Cache) onResize(_, newSize uint32) {
	c.metrics.incResize()
	c.metrics.setArenaBytes(newSize)
}

// rotationAdapter bridges genring.RotationController to the cache's cycle
// controller, also bumping the plain-rotation metric when Decide chooses not
// to resize (genring itself performs the physical rotation in that case).
type rotationAdapter struct {
	c *Cache
}

func (r rotationAdapter) Decide(now int64, current *arena.Arena) (bool, *arena.Arena) {
	resized, fresh := r.c.ctl.Decide(now, current)
	if !resized {
		r.c.metrics.incRotation()
	}
	return resized, fresh
}

func (r rotationAdapter) RecordTTL(ttl uint32) {
	r.c.ctl.RecordTTL(ttl)
}

// wireFatalLogging routes arena.OnFatal's diagnostic through logger before
// terminating the process. The replacement still always calls os.Exit(111):
// spec §7 requires that invariant-corruption aborts are never caught or
// recovered.
func wireFatalLogging(logger *zap.Logger) {
	arena.OnFatal = func(format string, args ...any) {
		logger.Error(fmt.Sprintf(format, args...))
		os.Exit(111)
	}
}
