// Package genring implements the entry engine: insertion, lookup and FIFO
// eviction over an *arena.Arena, plus the rotation that freezes the active
// region into the aged region and restarts the writer.
//
// Despite the name carried over from the teacher's generation-ring package,
// there is no pool of generations here — genring owns the single-buffer
// writer/oldest/unused rotation described in spec §3-§4, which plays the
// same structural role the teacher's ring played for time-bounded arenas:
// it is the thing that decides when the working region is full and must be
// recycled. All mutation assumes the caller already serializes access (spec
// §5); genring itself performs no locking.
//
// © 2025 arena-cache authors. MIT License.
package genring

import (
	"bytes"

	"github.com/Voskan/ttlarena/internal/arena"
)

// Re-exported bounds so callers need not import internal/arena directly.
const (
	MaxKeyLen     = arena.MaxKeyLen
	MaxDataLen    = arena.MaxDataLen
	MaxTTLSeconds = arena.MaxTTLSeconds
	MaxChainSteps = arena.MaxChainSteps
)

// RotationController is invoked by Insert exactly when the writer needs to
// wrap into an empty aged region (spec §4.5): the moment a rotation would
// otherwise occur. Decide may instead resize the cache; if it does, the
// caller must restart the insertion against the returned Arena from
// scratch, since the previous one has been discarded.
type RotationController interface {
	// Decide measures the just-finished cycle and returns (true, fresh) if
	// the cache was reinitialized at a new size, or (false, nil) if a plain
	// rotation should proceed.
	Decide(now int64, current *arena.Arena) (resized bool, fresh *arena.Arena)

	// RecordTTL folds ttl into the current cycle's TTL statistics. Called
	// once per successful insert.
	RecordTTL(ttl uint32)
}

// Lookup implements spec §4.2. It never mutates the arena.
func Lookup(a *arena.Arena, key []byte, now int64) (value []byte, remainingTTL int64, ok bool) {
	h := arena.Hash(key, a.Hsize)
	prev := h
	pos := a.HeadSlot(h)

	for steps := 0; pos != 0; steps++ {
		if steps >= MaxChainSteps {
			return nil, 0, false
		}

		keylen := arena.GetKeyLen(a.Buf, pos)
		if int(keylen) == len(key) && bytes.Equal(arena.KeySlice(a.Buf, pos, keylen), key) {
			expiry := arena.GetExpiry(a.Buf, pos)
			if expiry < now {
				return nil, 0, false
			}
			remaining := expiry - now
			if remaining > MaxTTLSeconds {
				remaining = MaxTTLSeconds
			}
			datalen := arena.GetDataLen(a.Buf, pos)
			return arena.DataSlice(a.Buf, pos, keylen, datalen), remaining, true
		}

		link := arena.GetLink(a.Buf, pos)
		next := link ^ prev
		prev = pos
		pos = next
	}
	return nil, 0, false
}

// Insert implements the make-room loop and write path of spec §4.3. aref is
// a pointer to the caller's *arena.Arena field so that a controller-driven
// resize can swap it in place; the caller must always dereference *aref
// again after Insert returns, since it may point at a brand-new Arena.
//
// Insert silently drops the insertion (returning false) only when the
// request cannot possibly fit into a freshly rotated, otherwise-empty
// buffer — the single caller-input-violation case spec §4.3 names
// explicitly. Oversized keys/values are expected to be rejected by the
// caller before Insert is ever called.
func Insert(aref **arena.Arena, rc RotationController, key, data []byte, ttl uint32, now int64) bool {
	entrylen := arena.EntrySize(uint32(len(key)), uint32(len(data)))

outer:
	for {
		a := *aref

		for a.Writer+entrylen > a.Oldest {
			if a.Oldest == a.Unused {
				if a.Writer <= a.Hsize {
					return false
				}
				resized, fresh := rc.Decide(now, a)
				if resized {
					*aref = fresh
					continue outer
				}
				rotate(a)
				continue
			}
			evictOldest(a)
		}

		writeEntry(a, rc, key, data, ttl, now)
		return true
	}
}

// rotate freezes the active region as the new aged region and restarts the
// writer at the top of the index (spec §4.3, rotation branch).
func rotate(a *arena.Arena) {
	a.Unused = a.Writer
	a.Oldest = a.Hsize
	a.Writer = a.Hsize
}

// evictOldest removes the oldest entry in the aged region, detaching it from
// its collision chain by XOR-ing its own offset into its sole remaining
// neighbor (spec §4.3's make-room eviction branch; see also spec §9's Open
// Question on why this is always correct for a chain tail).
func evictOldest(a *arena.Arena) {
	p := a.Oldest
	keylen := arena.GetKeyLen(a.Buf, p)
	datalen := arena.GetDataLen(a.Buf, p)
	firstLink := arena.GetLink(a.Buf, p)

	arena.XorAt(a.Buf, firstLink, p)

	a.Oldest += arena.EntrySize(keylen, datalen)
	if a.Oldest > a.Unused {
		arena.OnFatal("oldest %d overshot unused %d", a.Oldest, a.Unused)
		return
	}
	if a.Oldest == a.Unused {
		a.Unused = a.Size
		a.Oldest = a.Size
	}
}

// writeEntry performs the actual entry write and head-slot/chain update of
// spec §4.3's final paragraph, then records TTL statistics for the cycle
// controller.
func writeEntry(a *arena.Arena, rc RotationController, key, data []byte, ttl uint32, now int64) {
	h := arena.Hash(key, a.Hsize)
	oldHead := a.HeadSlot(h)
	pos := a.Writer

	if oldHead != 0 {
		arena.XorAt(a.Buf, oldHead, h^pos)
	}

	link := oldHead ^ h
	expiry := now + int64(ttl)
	arena.WriteEntry(a.Buf, pos, link, key, data, expiry)
	a.SetHeadSlot(h, pos)
	a.Writer += arena.EntrySize(uint32(len(key)), uint32(len(data)))

	rc.RecordTTL(ttl)
}
