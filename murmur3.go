package rowhash

import (
	"encoding/binary"

	"github.com/twmb/murmur3"
)

// murmur32Hasher implements the generic MurmurHash3 x86 32-bit row hash.
// Elements contribute their little-endian bit pattern at the type's natural
// width; the running 32-bit hash of one column seeds the next.
type murmur32Hasher struct{}

func (h murmur32Hasher) hashUint8(v uint8, s hashState) hashState {
	b := [1]byte{v}
	return h.hashBytes(b[:], s)
}

func (h murmur32Hasher) hashUint16(v uint16, s hashState) hashState {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return h.hashBytes(b[:], s)
}

func (h murmur32Hasher) hashUint32(v uint32, s hashState) hashState {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return h.hashBytes(b[:], s)
}

func (h murmur32Hasher) hashUint64(v uint64, s hashState) hashState {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return h.hashBytes(b[:], s)
}

func (murmur32Hasher) hashBytes(b []byte, s hashState) hashState {
	return hashState{h1: uint64(murmur3.SeedSum32(uint32(s.h1), b))}
}

func (h murmur32Hasher) hashSentinel(sentinel []byte, s hashState) hashState {
	return h.hashBytes(sentinel, s)
}

// murmur128Hasher implements the MurmurHash3 x64 128-bit row hash. Both
// 64-bit words of a column's result seed the next column, so the full 128
// bits participate in the chain.
type murmur128Hasher struct{}

func (h murmur128Hasher) hashUint8(v uint8, s hashState) hashState {
	b := [1]byte{v}
	return h.hashBytes(b[:], s)
}

func (h murmur128Hasher) hashUint16(v uint16, s hashState) hashState {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return h.hashBytes(b[:], s)
}

func (h murmur128Hasher) hashUint32(v uint32, s hashState) hashState {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return h.hashBytes(b[:], s)
}

func (h murmur128Hasher) hashUint64(v uint64, s hashState) hashState {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return h.hashBytes(b[:], s)
}

func (murmur128Hasher) hashBytes(b []byte, s hashState) hashState {
	h1, h2 := murmur3.SeedSum128(s.h1, s.h2, b)
	return hashState{h1: h1, h2: h2}
}

func (h murmur128Hasher) hashSentinel(sentinel []byte, s hashState) hashState {
	return h.hashBytes(sentinel, s)
}
