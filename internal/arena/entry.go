package arena

// Entry layout (spec §3), HeaderSize bytes followed by key then value:
//
//	+0   4   XOR link
//	+4   4   keylen
//	+8   4   datalen
//	+12  8   absolute expiry (unix seconds)
//	+20  keylen  key bytes
//	+20+keylen  datalen  value bytes

// EntrySize returns the total on-wire size of an entry with the given key
// and value lengths.
func EntrySize(keylen, datalen uint32) uint32 {
	return HeaderSize + keylen + datalen
}

// GetLink reads the XOR-link field of the entry at pos.
func GetLink(buf []byte, pos uint32) uint32 {
	return GetUint32(buf, pos)
}

// SetLink overwrites the XOR-link field of the entry at pos.
func SetLink(buf []byte, pos, v uint32) {
	PutUint32(buf, pos, v)
}

// GetKeyLen reads the keylen field of the entry at pos.
func GetKeyLen(buf []byte, pos uint32) uint32 {
	return GetUint32(buf, pos+4)
}

// GetDataLen reads the datalen field of the entry at pos.
func GetDataLen(buf []byte, pos uint32) uint32 {
	return GetUint32(buf, pos+8)
}

// GetExpiry reads the absolute expiry timestamp of the entry at pos.
func GetExpiry(buf []byte, pos uint32) int64 {
	return int64(GetUint64(buf, pos+12))
}

// SetExpiry overwrites the absolute expiry timestamp of the entry at pos.
func SetExpiry(buf []byte, pos uint32, expiry int64) {
	PutUint64(buf, pos+12, uint64(expiry))
}

// KeySlice returns the key bytes of the entry at pos as a slice aliasing the
// arena buffer. The slice is a borrow: valid only until the next mutation of
// the arena (spec §5).
func KeySlice(buf []byte, pos, keylen uint32) []byte {
	start := pos + HeaderSize
	checkBounds(buf, start, keylen)
	return buf[start : start+keylen]
}

// DataSlice returns the value bytes of the entry at pos as a slice aliasing
// the arena buffer, under the same borrow rules as KeySlice.
func DataSlice(buf []byte, pos, keylen, datalen uint32) []byte {
	start := pos + HeaderSize + keylen
	checkBounds(buf, start, datalen)
	return buf[start : start+datalen]
}

// WriteEntry writes a complete entry header plus key and value bytes at pos.
func WriteEntry(buf []byte, pos uint32, link uint32, key, data []byte, expiry int64) {
	keylen := uint32(len(key))
	datalen := uint32(len(data))
	PutUint32(buf, pos, link)
	PutUint32(buf, pos+4, keylen)
	PutUint32(buf, pos+8, datalen)
	PutUint64(buf, pos+12, uint64(expiry))
	dst := buf[pos+HeaderSize:]
	checkBounds(buf, pos+HeaderSize, keylen+datalen)
	copy(dst[:keylen], key)
	copy(dst[keylen:keylen+datalen], data)
}
