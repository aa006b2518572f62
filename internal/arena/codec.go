package arena

import (
	"encoding/binary"
	"fmt"
	"os"
)

// fatalPrintAndExit is the default body of OnFatal, split out so tests can
// swap OnFatal for something that doesn't call os.Exit while still exercising
// the formatting path via t.Helper-free direct calls if ever needed.
func fatalPrintAndExit(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "arena-cache: fatal corruption: "+format+"\n", args...)
	os.Exit(111)
}

// checkBounds aborts the process if [off, off+n) does not lie entirely
// within buf. This is the sole defense against programmer-introduced
// invariant violations (spec §4.1) and must never be elided: every packed
// read or write in this package goes through it.
func checkBounds(buf []byte, off, n uint32) {
	if uint64(off)+uint64(n) > uint64(len(buf)) {
		OnFatal("offset %d + length %d exceeds buffer of size %d", off, n, len(buf))
	}
}

// GetUint32 reads a little-endian uint32 at off.
func GetUint32(buf []byte, off uint32) uint32 {
	checkBounds(buf, off, 4)
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

// PutUint32 writes v as a little-endian uint32 at off.
func PutUint32(buf []byte, off uint32, v uint32) {
	checkBounds(buf, off, 4)
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

// GetUint64 reads a little-endian uint64 at off.
func GetUint64(buf []byte, off uint32) uint64 {
	checkBounds(buf, off, 8)
	return binary.LittleEndian.Uint64(buf[off : off+8])
}

// PutUint64 writes v as a little-endian uint64 at off.
func PutUint64(buf []byte, off uint32, v uint64) {
	checkBounds(buf, off, 8)
	binary.LittleEndian.PutUint64(buf[off:off+8], v)
}

// XorAt reads the 4-byte field at off and XORs val into it in place. It is
// used uniformly for hash-index head slots and entry link fields: both are
// bare 4-byte little-endian integers, so the same primitive detaches a chain
// tail regardless of whether its sole remaining neighbor is another entry or
// the bucket's head slot (spec §4.3).
func XorAt(buf []byte, off, val uint32) {
	cur := GetUint32(buf, off)
	PutUint32(buf, off, cur^val)
}
