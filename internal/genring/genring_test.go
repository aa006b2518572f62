package genring

import (
	"fmt"
	"testing"

	"github.com/Voskan/ttlarena/internal/arena"
)

// noResizeController never resizes; it just records TTLs, matching the
// behaviour of cyclectl.Controller when allowResize is false.
type noResizeController struct {
	ttls []uint32
}

func (c *noResizeController) Decide(now int64, current *arena.Arena) (bool, *arena.Arena) {
	return false, nil
}

func (c *noResizeController) RecordTTL(ttl uint32) {
	c.ttls = append(c.ttls, ttl)
}

func newArena(t *testing.T, size uint32) *arena.Arena {
	t.Helper()
	a, err := arena.Init(size)
	if err != nil {
		t.Fatalf("arena.Init(%d): %v", size, err)
	}
	return a
}

func TestInsertThenLookupHit(t *testing.T) {
	a := newArena(t, 4096)
	rc := &noResizeController{}

	if !Insert(&a, rc, []byte("k1"), []byte("v1"), 60, 1000) {
		t.Fatal("Insert returned false")
	}

	val, ttl, ok := Lookup(a, []byte("k1"), 1000)
	if !ok {
		t.Fatal("Lookup missed an entry just inserted")
	}
	if string(val) != "v1" {
		t.Fatalf("Lookup value = %q, want %q", val, "v1")
	}
	if ttl != 60 {
		t.Fatalf("Lookup remaining ttl = %d, want 60", ttl)
	}
}

func TestLookupMissUnknownKey(t *testing.T) {
	a := newArena(t, 4096)
	if _, _, ok := Lookup(a, []byte("nope"), 0); ok {
		t.Fatal("Lookup hit on an empty arena")
	}
}

func TestLookupMissExpiredEntry(t *testing.T) {
	a := newArena(t, 4096)
	rc := &noResizeController{}
	Insert(&a, rc, []byte("k"), []byte("v"), 10, 1000)

	// now > expiry (1000+10): entry has expired.
	if _, _, ok := Lookup(a, []byte("k"), 1011); ok {
		t.Fatal("Lookup hit on an expired entry")
	}
}

func TestInsertDistinctKeysAllRetrievable(t *testing.T) {
	a := newArena(t, 8192)
	rc := &noResizeController{}

	keys := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma"), []byte("delta")}
	for i, k := range keys {
		if !Insert(&a, rc, k, []byte(fmt.Sprintf("v%d", i)), 60, 0) {
			t.Fatalf("Insert(%q) returned false", k)
		}
	}
	for i, k := range keys {
		val, _, ok := Lookup(a, k, 0)
		if !ok {
			t.Fatalf("Lookup(%q) missed", k)
		}
		want := fmt.Sprintf("v%d", i)
		if string(val) != want {
			t.Fatalf("Lookup(%q) = %q, want %q", k, val, want)
		}
	}
}

// fifoRotateController allows unlimited plain rotations (never resizes),
// exercising Insert's make-room loop once the writable region fills.
type fifoRotateController struct{}

func (fifoRotateController) Decide(now int64, current *arena.Arena) (bool, *arena.Arena) {
	return false, nil
}
func (fifoRotateController) RecordTTL(uint32) {}

func TestRotationEvictsOldestUnderPressure(t *testing.T) {
	// A small arena forces many rotations/evictions as we insert far more
	// data than the buffer can hold at once, exercising spec §4.3/§4.4's
	// FIFO behaviour: the earliest keys are evicted first.
	a := newArena(t, arena.MinCacheSize)
	rc := fifoRotateController{}

	const n = 500
	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("key-%04d", i))
		val := []byte(fmt.Sprintf("val-%04d", i))
		Insert(&a, rc, key, val, 3600, 0)
	}

	// The most recently inserted key must still be present.
	last := []byte(fmt.Sprintf("key-%04d", n-1))
	if _, _, ok := Lookup(a, last, 0); !ok {
		t.Fatalf("most recent key %q was evicted", last)
	}

	// The very first key should long since have been evicted by FIFO
	// rotation given the tiny arena size.
	first := []byte("key-0000")
	if _, _, ok := Lookup(a, first, 0); ok {
		t.Fatalf("oldest key %q unexpectedly survived FIFO eviction", first)
	}
}

func TestInsertRejectsWhenEntryExceedsFreshlyRotatedBuffer(t *testing.T) {
	a := newArena(t, arena.MinCacheSize)
	rc := fifoRotateController{}

	// A key+value pair larger than the entire arena can never fit even in a
	// freshly rotated, empty buffer: Insert must report failure rather than
	// loop forever.
	hugeVal := make([]byte, arena.MinCacheSize*2)
	if Insert(&a, rc, []byte("k"), hugeVal, 60, 0) {
		t.Fatal("Insert should have rejected an entry larger than the arena")
	}
}

// resizeOnceController resizes exactly once, to prove Insert's iterative
// retry (the "outer" loop) restarts correctly against the new Arena.
type resizeOnceController struct {
	done bool
	newSize uint32
}

func (r *resizeOnceController) Decide(now int64, current *arena.Arena) (bool, *arena.Arena) {
	if r.done {
		return false, nil
	}
	r.done = true
	fresh, err := arena.Init(r.newSize)
	if err != nil {
		panic(err)
	}
	return true, fresh
}

func (r *resizeOnceController) RecordTTL(uint32) {}

func TestInsertRestartsAfterControllerResize(t *testing.T) {
	a := newArena(t, arena.MinCacheSize)
	rc := &resizeOnceController{newSize: 8192}

	// Fill the tiny original arena until Decide is invoked and resizes.
	var ok bool
	for i := 0; i < 50 && !rc.done; i++ {
		ok = Insert(&a, rc, []byte(fmt.Sprintf("k%02d", i)), []byte("v"), 60, 0)
		if !ok {
			t.Fatalf("Insert(%d) returned false before resize triggered", i)
		}
	}
	if !rc.done {
		t.Fatal("controller never resized across 50 inserts into a tiny arena")
	}
	if a.Size != 8192 {
		t.Fatalf("arena size after resize = %d, want 8192", a.Size)
	}
}
