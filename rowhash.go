// Package rowhash computes a deterministic hash value for every row of a
// table of arrow columns.
//
// The hash of a row is built by visiting its columns in declared order: the
// result of hashing one column becomes the seed for the next, starting from
// a caller supplied seed. Nested columns (lists, structs) chain their
// children with the same rule. The cryptographic digest algorithms chain by
// concatenation instead: all columns of a row feed one streaming digest.
//
// Inputs are read-only; every call is a pure function of the input record
// and configuration, safe to issue concurrently. Rows are hashed in
// parallel since no row depends on another.
package rowhash

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
)

// Algorithm identifies the hash function applied to each row.
type Algorithm int

const (
	// HashMurmur3 is the generic MurmurHash3 x86 32-bit hash.
	HashMurmur3 Algorithm = iota
	// HashMurmur3X64_128 is the MurmurHash3 x64 128-bit hash, producing two
	// 64-bit output columns.
	HashMurmur3X64_128
	// HashSparkMurmur3 is the 32-bit MurmurHash3 variant bit-compatible
	// with Apache Spark.
	HashSparkMurmur3
	// HashXXHash64 is the 64-bit XXHash hash.
	HashXXHash64
	// HashMD5 and the SHA constants are the cryptographic digests; their
	// output is a column of fixed-length lowercase hex strings.
	HashMD5
	HashSHA1
	HashSHA224
	HashSHA256
	HashSHA384
	HashSHA512
)

func (a Algorithm) String() string {
	switch a {
	case HashMurmur3:
		return "murmur3"
	case HashMurmur3X64_128:
		return "murmur3_x64_128"
	case HashSparkMurmur3:
		return "spark_murmur3"
	case HashXXHash64:
		return "xxhash64"
	case HashMD5:
		return "md5"
	case HashSHA1:
		return "sha1"
	case HashSHA224:
		return "sha224"
	case HashSHA256:
		return "sha256"
	case HashSHA384:
		return "sha384"
	case HashSHA512:
		return "sha512"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// Hash computes the row hashes of input with the given algorithm, returning
// one output column, or two for HashMurmur3X64_128 (high then low 64-bit
// halves). The seed, allocator, and parallelism are taken from options.
//
// The typed entry points (MurmurHash3X86_32, MD5, ...) are thin wrappers
// around the same engine with concrete output types.
func Hash(ctx context.Context, input arrow.Record, algorithm Algorithm, options ...HashOption) ([]arrow.Array, error) {
	config, err := newHashConfig(options...)
	if err != nil {
		return nil, err
	}
	switch algorithm {
	case HashMurmur3:
		a, err := hashFixed32(ctx, input, murmur32Hasher{}, config)
		if err != nil {
			return nil, err
		}
		return []arrow.Array{a}, nil
	case HashMurmur3X64_128:
		hi, lo, err := hashFixed128(ctx, input, murmur128Hasher{}, config)
		if err != nil {
			return nil, err
		}
		return []arrow.Array{hi, lo}, nil
	case HashSparkMurmur3:
		a, err := hashFixed32(ctx, input, sparkHasher{}, config)
		if err != nil {
			return nil, err
		}
		return []arrow.Array{a}, nil
	case HashXXHash64:
		a, err := hashFixed64(ctx, input, xxhash64Hasher{}, config)
		if err != nil {
			return nil, err
		}
		return []arrow.Array{a}, nil
	case HashMD5, HashSHA1, HashSHA224, HashSHA256, HashSHA384, HashSHA512:
		a, err := hashDigestRows(ctx, input, digestAlgorithmOf(algorithm), config)
		if err != nil {
			return nil, err
		}
		return []arrow.Array{a}, nil
	default:
		return nil, fmt.Errorf("rowhash: unknown algorithm %s", algorithm)
	}
}

func digestAlgorithmOf(a Algorithm) digestAlgorithm {
	switch a {
	case HashMD5:
		return md5Digest
	case HashSHA1:
		return sha1Digest
	case HashSHA224:
		return sha224Digest
	case HashSHA256:
		return sha256Digest
	case HashSHA384:
		return sha384Digest
	default:
		return sha512Digest
	}
}

// MurmurHash3X86_32 computes the MurmurHash3 32-bit hash of each row, using
// seed for the first column and each column's result as the seed of the
// next.
func MurmurHash3X86_32(ctx context.Context, input arrow.Record, seed uint32, options ...HashOption) (*array.Uint32, error) {
	config, err := newHashConfig(options...)
	if err != nil {
		return nil, err
	}
	config.Seed = uint64(seed)
	return hashFixed32(ctx, input, murmur32Hasher{}, config)
}

// MurmurHash3X64_128 computes the MurmurHash3 x64 128-bit hash of each row,
// returned as two uint64 columns holding the high and low halves.
func MurmurHash3X64_128(ctx context.Context, input arrow.Record, seed uint64, options ...HashOption) (hi, lo *array.Uint64, err error) {
	config, err := newHashConfig(options...)
	if err != nil {
		return nil, nil, err
	}
	config.Seed = seed
	return hashFixed128(ctx, input, murmur128Hasher{}, config)
}

// SparkMurmurHash3X86_32 computes the 32-bit MurmurHash3 variant matching
// Apache Spark's results on identical inputs.
func SparkMurmurHash3X86_32(ctx context.Context, input arrow.Record, seed uint32, options ...HashOption) (*array.Uint32, error) {
	config, err := newHashConfig(options...)
	if err != nil {
		return nil, err
	}
	config.Seed = uint64(seed)
	return hashFixed32(ctx, input, sparkHasher{}, config)
}

// XXHash64 computes the 64-bit XXHash of each row.
func XXHash64(ctx context.Context, input arrow.Record, seed uint64, options ...HashOption) (*array.Uint64, error) {
	config, err := newHashConfig(options...)
	if err != nil {
		return nil, err
	}
	config.Seed = seed
	return hashFixed64(ctx, input, xxhash64Hasher{}, config)
}

// MD5 computes the MD5 digest of each row as a column of 32-character hex
// strings.
func MD5(ctx context.Context, input arrow.Record, options ...HashOption) (*array.String, error) {
	return digestEntry(ctx, input, md5Digest, options)
}

// SHA1 computes the SHA-1 digest of each row as a column of 40-character hex
// strings.
func SHA1(ctx context.Context, input arrow.Record, options ...HashOption) (*array.String, error) {
	return digestEntry(ctx, input, sha1Digest, options)
}

// SHA224 computes the SHA-224 digest of each row as a column of 56-character
// hex strings.
func SHA224(ctx context.Context, input arrow.Record, options ...HashOption) (*array.String, error) {
	return digestEntry(ctx, input, sha224Digest, options)
}

// SHA256 computes the SHA-256 digest of each row as a column of 64-character
// hex strings.
func SHA256(ctx context.Context, input arrow.Record, options ...HashOption) (*array.String, error) {
	return digestEntry(ctx, input, sha256Digest, options)
}

// SHA384 computes the SHA-384 digest of each row as a column of 96-character
// hex strings.
func SHA384(ctx context.Context, input arrow.Record, options ...HashOption) (*array.String, error) {
	return digestEntry(ctx, input, sha384Digest, options)
}

// SHA512 computes the SHA-512 digest of each row as a column of
// 128-character hex strings.
func SHA512(ctx context.Context, input arrow.Record, options ...HashOption) (*array.String, error) {
	return digestEntry(ctx, input, sha512Digest, options)
}

func digestEntry(ctx context.Context, input arrow.Record, alg digestAlgorithm, options []HashOption) (*array.String, error) {
	config, err := newHashConfig(options...)
	if err != nil {
		return nil, err
	}
	return hashDigestRows(ctx, input, alg, config)
}
