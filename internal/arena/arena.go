// Package arena implements the single contiguous byte buffer that backs the
// cache: the hash index at its low end, the active/free/aged entry regions
// threaded through the rest, and the fixed-width codec used to read and
// write offsets, lengths and expiry timestamps in place.
//
// The package is intentionally thin, in the spirit of the teacher's own
// internal/arena wrapper: no pooling, no stats, no retries. Every exported
// function either operates on a caller-owned *Arena or is a pure helper over
// a []byte. Concerns that belong to upper layers — eviction policy, cycle
// timing, metrics — live in internal/genring and internal/cyclectl.
//
// © 2025 arena-cache authors. MIT License.
package arena

import (
	"errors"

	"github.com/Voskan/ttlarena/internal/unsafehelpers"
)

// Fixed bounds from the external interface contract (spec §6).
const (
	MaxKeyLen     = 1000
	MaxDataLen    = 1_000_000
	MinCacheSize  = 100
	MaxCacheSize  = 1_000_000_000
	MaxTTLSeconds = 604_800
	MaxChainSteps = 100

	// HeaderSize is the fixed prefix of every entry: link(4) + keylen(4) +
	// datalen(4) + expiry(8).
	HeaderSize = 20
)

var (
	// ErrSizeOutOfRange is returned by Init when cachesize cannot be clamped
	// into [MinCacheSize, MaxCacheSize] (only possible for non-positive
	// sizes; everything else is silently clamped per spec §4.6).
	ErrSizeOutOfRange = errors.New("arena: cachesize must be positive")
)

// OnFatal is invoked whenever packed offset arithmetic would read or write
// outside the buffer. Per spec §7 this represents an invariant violation
// that must not be caught or recovered: the default implementation prints a
// diagnostic and terminates the process with status 111. Upper layers (see
// pkg.Cache) may override it to route the diagnostic through a structured
// logger before exiting, but any replacement MUST still terminate the
// process — this is not an error-reporting hook.
var OnFatal = defaultFatal

// Arena is the buffer and its four partitioning cursors (spec §3).
type Arena struct {
	Buf    []byte
	Size   uint32
	Hsize  uint32
	Writer uint32
	Oldest uint32
	Unused uint32
}

// clampSize forces cachesize into [MinCacheSize, MaxCacheSize].
func clampSize(cachesize uint32) uint32 {
	if cachesize < MinCacheSize {
		return MinCacheSize
	}
	if cachesize > MaxCacheSize {
		return MaxCacheSize
	}
	return cachesize
}

// computeHsize returns the largest power of two h, starting from 4 and
// doubling, such that h <= size/32 (or 4 when size/32 < 8). This is strictly
// tighter than the
// documented bound hsize <= size/16 (spec §3), which it therefore always
// satisfies.
func computeHsize(size uint32) uint32 {
	h := uint32(4)
	for h*2 <= size/32 {
		h *= 2
	}
	return h
}

// Init allocates a fresh, zeroed Arena of the given size (clamped into
// bounds) with cursors reset to the empty state: Writer = Hsize,
// Oldest = Unused = Size. It never mutates an existing Arena — callers that
// need "reinit on resize" semantics (spec §4.6: allocate-before-free so a
// failing allocation leaves prior state intact) simply keep using their old
// *Arena until Init returns successfully, then swap the pointer.
func Init(cachesize uint32) (*Arena, error) {
	if cachesize == 0 {
		return nil, ErrSizeOutOfRange
	}
	size := clampSize(cachesize)
	hsize := computeHsize(size)
	if !unsafehelpers.IsPowerOfTwo(uintptr(hsize)) {
		OnFatal("arena: computed hsize %d is not a power of two", hsize)
		return nil, ErrSizeOutOfRange
	}
	a := &Arena{
		Buf:    make([]byte, size),
		Size:   size,
		Hsize:  hsize,
		Writer: hsize,
		Oldest: size,
		Unused: size,
	}
	return a, nil
}

// HeadSlot returns the raw 4-byte value stored at hash-index offset h: the
// offset of the newest entry in that bucket, or 0 for an empty chain.
func (a *Arena) HeadSlot(h uint32) uint32 {
	return GetUint32(a.Buf, h)
}

// SetHeadSlot overwrites the head-slot value for bucket h.
func (a *Arena) SetHeadSlot(h, v uint32) {
	PutUint32(a.Buf, h, v)
}

func defaultFatal(format string, args ...any) {
	fatalPrintAndExit(format, args...)
}
