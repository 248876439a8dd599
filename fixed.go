package rowhash

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"

	"github.com/tablekit/rowhash/internal/debug"
	"github.com/tablekit/rowhash/internal/parallel"
)

// hashFixedRows runs a fixed width hash over every row of the input. Rows
// are independent, so the work is a data-parallel map: each worker owns a
// contiguous range of rows and writes only its own slots of the output.
// Within one row, columns are visited in declared order because each
// column's result seeds the next.
func hashFixedRows(ctx context.Context, input arrow.Record, h fixedHasher, seed hashState, config *HashConfig) ([]hashState, error) {
	n, err := numRows(input)
	if err != nil {
		return nil, err
	}
	funcs, err := compileFixedColumns(input, h)
	if err != nil {
		return nil, err
	}

	debug.Format("rowhash: %T over %d rows x %d columns (parallelism=%d)",
		h, n, len(funcs), config.Parallelism)

	out := make([]hashState, n)
	err = parallel.Range(ctx, n, config.Parallelism, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			s := seed
			for _, f := range funcs {
				s = f(i, s)
			}
			out[i] = s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func hashFixed32(ctx context.Context, input arrow.Record, h fixedHasher, config *HashConfig) (*array.Uint32, error) {
	seed := hashState{h1: uint64(uint32(config.Seed))}
	states, err := hashFixedRows(ctx, input, h, seed, config)
	if err != nil {
		return nil, err
	}
	return materializeUint32(config.Allocator, states)
}

func hashFixed64(ctx context.Context, input arrow.Record, h fixedHasher, config *HashConfig) (*array.Uint64, error) {
	seed := hashState{h1: config.Seed}
	states, err := hashFixedRows(ctx, input, h, seed, config)
	if err != nil {
		return nil, err
	}
	return materializeUint64(config.Allocator, states, func(s hashState) uint64 { return s.h1 })
}

func hashFixed128(ctx context.Context, input arrow.Record, h fixedHasher, config *HashConfig) (hi, lo *array.Uint64, err error) {
	// Both words start from the seed, matching the reference algorithm's
	// initialization of h1 and h2.
	seed := hashState{h1: config.Seed, h2: config.Seed}
	states, err := hashFixedRows(ctx, input, h, seed, config)
	if err != nil {
		return nil, nil, err
	}
	hi, err = materializeUint64(config.Allocator, states, func(s hashState) uint64 { return s.h2 })
	if err != nil {
		return nil, nil, err
	}
	lo, err = materializeUint64(config.Allocator, states, func(s hashState) uint64 { return s.h1 })
	if err != nil {
		hi.Release()
		return nil, nil, err
	}
	return hi, lo, nil
}

func materializeUint32(mem memory.Allocator, states []hashState) (out *array.Uint32, err error) {
	defer recoverAllocation(&err)
	values := make([]uint32, len(states))
	for i, s := range states {
		values[i] = uint32(s.h1)
	}
	b := array.NewUint32Builder(mem)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewUint32Array(), nil
}

func materializeUint64(mem memory.Allocator, states []hashState, word func(hashState) uint64) (out *array.Uint64, err error) {
	defer recoverAllocation(&err)
	values := make([]uint64, len(states))
	for i, s := range states {
		values[i] = word(s)
	}
	b := array.NewUint64Builder(mem)
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewUint64Array(), nil
}

// Arrow allocators report exhaustion by panicking; the engine's contract is
// an error return with no partial output, so materialization converts the
// panic at the boundary.
func recoverAllocation(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("rowhash: output allocation failed: %v", r)
	}
}
