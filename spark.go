package rowhash

import (
	"encoding/binary"
	"math/bits"
)

// sparkHasher implements the MurmurHash3 x86 32-bit variant that reproduces
// Apache Spark's row hashes bit-for-bit. It deviates from the generic
// algorithm in three places, all required for compatibility:
//
//   - integers narrower than 32 bits (and booleans) are sign-extended to 32
//     bits and hashed through the 4-byte path;
//   - 64-bit values are hashed as two consecutive 4-byte rounds, low word
//     first;
//   - the tail of a byte string is not folded the standard way: every
//     remaining byte is sign-extended to 32 bits and put through a full
//     mixing round of its own.
//
// Null values contribute nothing: the running hash passes through unchanged,
// which is how Spark skips null children. Do not "fix" any of this without
// checking against Spark's own output; local tests cannot catch a
// cross-system mismatch.
type sparkHasher struct{}

func (sparkHasher) hashUint8(v uint8, s hashState) hashState {
	return hashState{h1: uint64(sparkHashInt(int32(int8(v)), uint32(s.h1)))}
}

func (sparkHasher) hashUint16(v uint16, s hashState) hashState {
	return hashState{h1: uint64(sparkHashInt(int32(int16(v)), uint32(s.h1)))}
}

func (sparkHasher) hashUint32(v uint32, s hashState) hashState {
	return hashState{h1: uint64(sparkHashInt(int32(v), uint32(s.h1)))}
}

func (sparkHasher) hashUint64(v uint64, s hashState) hashState {
	return hashState{h1: uint64(sparkHashLong(int64(v), uint32(s.h1)))}
}

func (sparkHasher) hashBytes(b []byte, s hashState) hashState {
	return hashState{h1: uint64(sparkHashBytes(b, uint32(s.h1)))}
}

func (sparkHasher) hashSentinel(_ []byte, s hashState) hashState {
	return s
}

const (
	sparkC1 = 0xcc9e2d51
	sparkC2 = 0x1b873593
)

func sparkMixK1(k1 uint32) uint32 {
	k1 *= sparkC1
	k1 = bits.RotateLeft32(k1, 15)
	k1 *= sparkC2
	return k1
}

func sparkMixH1(h1, k1 uint32) uint32 {
	h1 ^= k1
	h1 = bits.RotateLeft32(h1, 13)
	return h1*5 + 0xe6546b64
}

func sparkFinalize(h1 uint32, length int) uint32 {
	h1 ^= uint32(length)
	h1 ^= h1 >> 16
	h1 *= 0x85ebca6b
	h1 ^= h1 >> 13
	h1 *= 0xc2b2ae35
	h1 ^= h1 >> 16
	return h1
}

func sparkHashInt(v int32, seed uint32) uint32 {
	return sparkFinalize(sparkMixH1(seed, sparkMixK1(uint32(v))), 4)
}

func sparkHashLong(v int64, seed uint32) uint32 {
	h1 := sparkMixH1(seed, sparkMixK1(uint32(uint64(v))))
	h1 = sparkMixH1(h1, sparkMixK1(uint32(uint64(v)>>32)))
	return sparkFinalize(h1, 8)
}

func sparkHashBytes(b []byte, seed uint32) uint32 {
	h1 := seed
	i := 0
	for ; i+4 <= len(b); i += 4 {
		h1 = sparkMixH1(h1, sparkMixK1(binary.LittleEndian.Uint32(b[i:])))
	}
	// Tail bytes are sign-extended and mixed one full round each.
	for ; i < len(b); i++ {
		h1 = sparkMixH1(h1, sparkMixK1(uint32(int32(int8(b[i])))))
	}
	return sparkFinalize(h1, len(b))
}
