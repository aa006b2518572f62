// Package unsafehelpers centralises all unavoidable usage of the `unsafe`
// standard-library package so the rest of this module stays clean and easy
// to audit. Every helper is documented with clear pre-/post-conditions.
//
// DISCLAIMER: these helpers deliberately break the Go memory-safety model
// for the sake of zero-allocation conversions. Use ONLY inside this
// repository; they are not part of the public API and may change without
// notice. Misuse will lead to subtle data races or garbage-collector
// corruption.
//
// All functions are go:linkname-free, cgo-free and pure Go.
//
// © 2025 arena-cache authors. MIT License.
package unsafehelpers

import "unsafe"

// BytesToString converts a mutable byte slice to an immutable string without
// allocating. The caller must guarantee that b will never be modified for
// the lifetime of the resulting string; otherwise the program exhibits
// undefined behaviour.
//
// Used by the default facade to derive singleflight keys from user-supplied
// byte-string keys without an extra allocation per call.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// IsPowerOfTwo returns true if x is a power of two (exactly one bit set).
// Used to assert the arena's computed hash-index size stays a power of two
// (spec §3).
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && (x&(x-1)) == 0
}
