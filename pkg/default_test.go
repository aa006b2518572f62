package cache

import (
	"context"
	"errors"
	"testing"
)

func TestDefaultFacadeGetSetRoundTrip(t *testing.T) {
	if err := InitDefault(4096); err != nil {
		t.Fatalf("InitDefault: %v", err)
	}
	defer DestroyDefault()

	Set([]byte("k"), []byte("v"), 60)
	val, _, ok := Get([]byte("k"))
	if !ok {
		t.Fatal("Get missed a key just Set through the default facade")
	}
	if string(val) != "v" {
		t.Fatalf("Get value = %q, want %q", val, "v")
	}
}

func TestDefaultFacadeMissBeforeInit(t *testing.T) {
	// No InitDefault call in this test; currentDefault() must be nil.
	if _, _, ok := Get([]byte("k")); ok {
		t.Fatal("Get hit before any InitDefault call")
	}
	Set([]byte("k"), []byte("v"), 60) // must not panic
	if Motion() != 0 {
		t.Fatal("Motion nonzero before any InitDefault call")
	}
}

func TestGetOrLoadPopulatesAndSkipsLoaderOnHit(t *testing.T) {
	if err := InitDefault(4096); err != nil {
		t.Fatalf("InitDefault: %v", err)
	}
	defer DestroyDefault()

	var calls int
	loader := func(ctx context.Context, key []byte) ([]byte, uint32, error) {
		calls++
		return []byte("loaded:" + string(key)), 60, nil
	}

	v, err := GetOrLoad(context.Background(), []byte("k"), loader)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if string(v) != "loaded:k" {
		t.Fatalf("GetOrLoad value = %q, want %q", v, "loaded:k")
	}
	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}

	// Second call should now hit the cache and skip the loader entirely.
	v2, err := GetOrLoad(context.Background(), []byte("k"), loader)
	if err != nil {
		t.Fatalf("GetOrLoad second call: %v", err)
	}
	if string(v2) != "loaded:k" {
		t.Fatalf("GetOrLoad second value = %q, want %q", v2, "loaded:k")
	}
	if calls != 1 {
		t.Fatalf("loader called %d times after a cache hit, want still 1", calls)
	}
}

func TestGetOrLoadPropagatesLoaderError(t *testing.T) {
	if err := InitDefault(4096); err != nil {
		t.Fatalf("InitDefault: %v", err)
	}
	defer DestroyDefault()

	wantErr := errors.New("boom")
	loader := func(ctx context.Context, key []byte) ([]byte, uint32, error) {
		return nil, 0, wantErr
	}
	if _, err := GetOrLoad(context.Background(), []byte("k"), loader); !errors.Is(err, wantErr) {
		t.Fatalf("GetOrLoad err = %v, want %v", err, wantErr)
	}
}

func TestSetOptionsOnDefaultFacade(t *testing.T) {
	if err := InitDefault(4096); err != nil {
		t.Fatalf("InitDefault: %v", err)
	}
	defer DestroyDefault()

	if err := SetOptions(WithAllowResize(false)); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
}

func TestReinitDefaultViaInitDefault(t *testing.T) {
	if err := InitDefault(4096); err != nil {
		t.Fatalf("InitDefault: %v", err)
	}
	defer DestroyDefault()

	Set([]byte("k"), []byte("v"), 60)
	if err := InitDefault(8192); err != nil {
		t.Fatalf("reinit InitDefault: %v", err)
	}
	if _, _, ok := Get([]byte("k")); ok {
		t.Fatal("reinitializing the default cache should discard prior entries")
	}
}
