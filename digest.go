package rowhash

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"

	"github.com/tablekit/rowhash/internal/debug"
	"github.com/tablekit/rowhash/internal/parallel"
	"github.com/tablekit/rowhash/internal/unsafecast"
)

// digestAlgorithm describes one member of the cryptographic digest family.
// All of them share the same execution: one streaming digest per row, all
// columns' bytes concatenated, the raw digest hex-encoded into a string
// column of fixed width.
type digestAlgorithm struct {
	name string
	size int // raw digest length in bytes; output strings are twice as long
	new  func() hash.Hash
}

var (
	md5Digest    = digestAlgorithm{"md5", md5.Size, md5.New}
	sha1Digest   = digestAlgorithm{"sha1", sha1.Size, sha1.New}
	sha224Digest = digestAlgorithm{"sha224", sha256.Size224, sha256.New224}
	sha256Digest = digestAlgorithm{"sha256", sha256.Size, sha256.New}
	sha384Digest = digestAlgorithm{"sha384", sha512.Size384, sha512.New384}
	sha512Digest = digestAlgorithm{"sha512", sha512.Size, sha512.New}
)

// hashDigestRows computes one hex digest per row. Workers keep a private
// hash.Hash so per-row streaming state never crosses goroutines, and write
// into disjoint spans of the output buffer.
func hashDigestRows(ctx context.Context, input arrow.Record, alg digestAlgorithm, config *HashConfig) (*array.String, error) {
	n, err := numRows(input)
	if err != nil {
		return nil, err
	}
	funcs, err := compileAppendColumns(input)
	if err != nil {
		return nil, err
	}

	debug.Format("rowhash: %s over %d rows x %d columns (parallelism=%d)",
		alg.name, n, len(funcs), config.Parallelism)

	width := 2 * alg.size
	buf := make([]byte, n*width)
	err = parallel.Range(ctx, n, config.Parallelism, func(lo, hi int) error {
		d := alg.new()
		sum := make([]byte, 0, alg.size)
		for i := lo; i < hi; i++ {
			d.Reset()
			for _, f := range funcs {
				f(i, d)
			}
			sum = d.Sum(sum[:0])
			hex.Encode(buf[i*width:(i+1)*width], sum)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return materializeHex(config.Allocator, buf, n, width)
}

func materializeHex(mem memory.Allocator, buf []byte, n, width int) (out *array.String, err error) {
	defer recoverAllocation(&err)
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.Reserve(n)
	for i := 0; i < n; i++ {
		// Append copies, so the no-copy string view is safe here.
		b.Append(unsafecast.BytesToString(buf[i*width : (i+1)*width]))
	}
	return b.NewStringArray(), nil
}
