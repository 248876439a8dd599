package rowhash

import "math"

// hashState carries the running hash of one row between columns. The 32 and
// 64 bit algorithms keep their value in h1 (the 32 bit ones in its low
// half); the 128 bit algorithm uses both words. The state produced by one
// column seeds the next, which is what makes row hashes sensitive to column
// order.
type hashState struct {
	h1 uint64
	h2 uint64
}

// fixedHasher is implemented once per fixed width algorithm. Each method
// folds one element into the running state; the per-width methods exist
// because algorithms disagree on how narrow integers are consumed (the
// Spark-compatible variant promotes anything below 32 bits).
//
// Implementations must be stateless: the same value is shared by every
// worker goroutine of a call.
type fixedHasher interface {
	hashUint8(v uint8, s hashState) hashState
	hashUint16(v uint16, s hashState) hashState
	hashUint32(v uint32, s hashState) hashState
	hashUint64(v uint64, s hashState) hashState
	hashBytes(b []byte, s hashState) hashState
	hashSentinel(sentinel []byte, s hashState) hashState
}

// Sentinels hashed in place of values that have no bytes of their own. The
// patterns are arbitrary but frozen: changing any of them changes every hash
// this package produces. They keep nulls deterministic regardless of the
// physical memory behind a null slot, and keep a null list distinct from an
// empty one.
var (
	nullSentinel       = []byte{0x8b, 0x9d, 0x1b, 0xf6, 0x2a, 0xd1, 0x4e, 0x45}
	nullListSentinel   = []byte{0x26, 0xe0, 0x9a, 0x71, 0x5c, 0x03, 0xb8, 0x92}
	emptyListSentinel  = []byte{0xd3, 0x6f, 0x47, 0x28, 0xe1, 0xba, 0x0c, 0x57}
	nullStructSentinel = []byte{0x49, 0x12, 0xf7, 0x8e, 0x35, 0xca, 0x60, 0xdb}
)

const (
	canonicalNaN32 = 0x7fc00000
	canonicalNaN64 = 0x7ff8000000000000
)

// canonicalFloat32 returns the bit pattern hashed for a float32 element.
// Negative zero maps to positive zero and every NaN maps to the canonical
// quiet NaN, so numerically equal values hash identically.
func canonicalFloat32(f float32) uint32 {
	if f != f {
		return canonicalNaN32
	}
	if f == 0 {
		return 0
	}
	return math.Float32bits(f)
}

func canonicalFloat64(f float64) uint64 {
	if f != f {
		return canonicalNaN64
	}
	if f == 0 {
		return 0
	}
	return math.Float64bits(f)
}
