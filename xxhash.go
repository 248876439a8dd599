package rowhash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// xxhash64Hasher implements the 64-bit XXHash row hash. Like the murmur
// hashers it consumes the element's little-endian bit pattern at the type's
// natural width, seeded by the previous column's result.
type xxhash64Hasher struct{}

func (h xxhash64Hasher) hashUint8(v uint8, s hashState) hashState {
	b := [1]byte{v}
	return h.hashBytes(b[:], s)
}

func (h xxhash64Hasher) hashUint16(v uint16, s hashState) hashState {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return h.hashBytes(b[:], s)
}

func (h xxhash64Hasher) hashUint32(v uint32, s hashState) hashState {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return h.hashBytes(b[:], s)
}

func (h xxhash64Hasher) hashUint64(v uint64, s hashState) hashState {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return h.hashBytes(b[:], s)
}

func (xxhash64Hasher) hashBytes(b []byte, s hashState) hashState {
	var d xxhash.Digest
	d.ResetWithSeed(s.h1)
	d.Write(b)
	return hashState{h1: d.Sum64()}
}

func (h xxhash64Hasher) hashSentinel(sentinel []byte, s hashState) hashState {
	return h.hashBytes(sentinel, s)
}
