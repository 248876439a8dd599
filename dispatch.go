package rowhash

import (
	"encoding/binary"
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"

	"github.com/tablekit/rowhash/internal/unsafecast"
)

// MaxNestingDepth is the maximum depth of nested list/struct columns the
// engine accepts. Deeper schemas are rejected with ErrTypeUnsupported before
// any output is allocated, which keeps the dispatcher's recursion bounded.
const MaxNestingDepth = 64

// rowHashFunc folds one row of one column into the running row state.
type rowHashFunc func(row int, s hashState) hashState

// compileFixed builds the per-row hash function for one column of a fixed
// width hash computation. It is called once per column before any output is
// allocated, so unsupported types surface before the engine does any work.
//
// The returned closures capture the column and are invoked concurrently on
// disjoint row ranges; they only read.
func compileFixed(col arrow.Array, h fixedHasher, depth int) (rowHashFunc, error) {
	if depth > MaxNestingDepth {
		return nil, fmt.Errorf("rowhash: column nesting exceeds %d levels: %w", MaxNestingDepth, ErrTypeUnsupported)
	}

	switch a := col.(type) {
	case *array.Boolean:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			if a.Value(i) {
				return h.hashUint8(1, s)
			}
			return h.hashUint8(0, s)
		}, nil

	case *array.Int8:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint8(uint8(a.Value(i)), s)
		}, nil

	case *array.Uint8:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint8(a.Value(i), s)
		}, nil

	case *array.Int16:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint16(uint16(a.Value(i)), s)
		}, nil

	case *array.Uint16:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint16(a.Value(i), s)
		}, nil

	case *array.Int32:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint32(uint32(a.Value(i)), s)
		}, nil

	case *array.Uint32:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint32(a.Value(i), s)
		}, nil

	case *array.Int64:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint64(uint64(a.Value(i)), s)
		}, nil

	case *array.Uint64:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint64(a.Value(i), s)
		}, nil

	case *array.Float32:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint32(canonicalFloat32(a.Value(i)), s)
		}, nil

	case *array.Float64:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint64(canonicalFloat64(a.Value(i)), s)
		}, nil

	case *array.Date32:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint32(uint32(a.Value(i)), s)
		}, nil

	case *array.Date64:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint64(uint64(a.Value(i)), s)
		}, nil

	case *array.Time32:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint32(uint32(a.Value(i)), s)
		}, nil

	case *array.Time64:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint64(uint64(a.Value(i)), s)
		}, nil

	case *array.Timestamp:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint64(uint64(a.Value(i)), s)
		}, nil

	case *array.Duration:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashUint64(uint64(a.Value(i)), s)
		}, nil

	case *array.Decimal128:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			v := a.Value(i)
			var b [16]byte
			binary.LittleEndian.PutUint64(b[:8], v.LowBits())
			binary.LittleEndian.PutUint64(b[8:], uint64(v.HighBits()))
			return h.hashBytes(b[:], s)
		}, nil

	case *array.String:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashBytes(unsafecast.StringToBytes(a.Value(i)), s)
		}, nil

	case *array.LargeString:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashBytes(unsafecast.StringToBytes(a.Value(i)), s)
		}, nil

	case *array.Binary:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashBytes(a.Value(i), s)
		}, nil

	case *array.LargeBinary:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashBytes(a.Value(i), s)
		}, nil

	case *array.FixedSizeBinary:
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullSentinel, s)
			}
			return h.hashBytes(a.Value(i), s)
		}, nil

	case *array.Null:
		return func(i int, s hashState) hashState {
			return h.hashSentinel(nullSentinel, s)
		}, nil

	case *array.List:
		elem, err := compileFixed(a.ListValues(), h, depth+1)
		if err != nil {
			return nil, err
		}
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullListSentinel, s)
			}
			beg, end := a.ValueOffsets(i)
			if beg == end {
				return h.hashSentinel(emptyListSentinel, s)
			}
			for j := beg; j < end; j++ {
				s = elem(int(j), s)
			}
			return s
		}, nil

	case *array.LargeList:
		elem, err := compileFixed(a.ListValues(), h, depth+1)
		if err != nil {
			return nil, err
		}
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullListSentinel, s)
			}
			beg, end := a.ValueOffsets(i)
			if beg == end {
				return h.hashSentinel(emptyListSentinel, s)
			}
			for j := beg; j < end; j++ {
				s = elem(int(j), s)
			}
			return s
		}, nil

	case *array.FixedSizeList:
		elem, err := compileFixed(a.ListValues(), h, depth+1)
		if err != nil {
			return nil, err
		}
		size := int(a.DataType().(*arrow.FixedSizeListType).Len())
		offset := a.Data().Offset()
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullListSentinel, s)
			}
			if size == 0 {
				return h.hashSentinel(emptyListSentinel, s)
			}
			beg := (offset + i) * size
			for j := beg; j < beg+size; j++ {
				s = elem(j, s)
			}
			return s
		}, nil

	case *array.Struct:
		fields := make([]rowHashFunc, a.NumField())
		for f := range fields {
			field, err := compileFixed(a.Field(f), h, depth+1)
			if err != nil {
				return nil, err
			}
			fields[f] = field
		}
		return func(i int, s hashState) hashState {
			if a.IsNull(i) {
				return h.hashSentinel(nullStructSentinel, s)
			}
			for _, f := range fields {
				s = f(i, s)
			}
			return s
		}, nil

	default:
		return nil, fmt.Errorf("rowhash: cannot hash column of type %s: %w", col.DataType(), ErrTypeUnsupported)
	}
}

// compileFixedColumns compiles all columns of a record up front so that type
// errors surface before output allocation.
func compileFixedColumns(input arrow.Record, h fixedHasher) ([]rowHashFunc, error) {
	funcs := make([]rowHashFunc, input.NumCols())
	for i, col := range input.Columns() {
		f, err := compileFixed(col, h, 0)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", i, input.Schema().Field(i).Name, err)
		}
		funcs[i] = f
	}
	return funcs, nil
}
