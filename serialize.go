package rowhash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"

	"github.com/tablekit/rowhash/internal/unsafecast"
)

// appendRowFunc streams the canonical bytes of one row of one column into w.
// The digest algorithms chain columns by concatenation, so this is their
// entire per-column contract: all columns of a row feed one digest.
type appendRowFunc func(row int, w io.Writer)

// compileAppend builds the byte serializer for one column of a digest
// computation. Elements are encoded exactly like the fixed width family
// consumes them: little-endian at the type's natural width, raw bytes for
// strings and binaries, fixed sentinels for nulls and empty lists. A row
// holding one empty string therefore digests to the published empty-input
// digest.
func compileAppend(col arrow.Array, depth int) (appendRowFunc, error) {
	if depth > MaxNestingDepth {
		return nil, fmt.Errorf("rowhash: column nesting exceeds %d levels: %w", MaxNestingDepth, ErrTypeUnsupported)
	}

	switch a := col.(type) {
	case *array.Boolean:
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullSentinel)
				return
			}
			b := [1]byte{0}
			if a.Value(i) {
				b[0] = 1
			}
			w.Write(b[:])
		}, nil

	case *array.Int8:
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullSentinel)
				return
			}
			b := [1]byte{uint8(a.Value(i))}
			w.Write(b[:])
		}, nil

	case *array.Uint8:
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullSentinel)
				return
			}
			b := [1]byte{a.Value(i)}
			w.Write(b[:])
		}, nil

	case *array.Int16:
		return appendUint16(a.IsNull, func(i int) uint16 { return uint16(a.Value(i)) }), nil
	case *array.Uint16:
		return appendUint16(a.IsNull, a.Value), nil

	case *array.Int32:
		return appendUint32(a.IsNull, func(i int) uint32 { return uint32(a.Value(i)) }), nil
	case *array.Uint32:
		return appendUint32(a.IsNull, a.Value), nil
	case *array.Date32:
		return appendUint32(a.IsNull, func(i int) uint32 { return uint32(a.Value(i)) }), nil
	case *array.Time32:
		return appendUint32(a.IsNull, func(i int) uint32 { return uint32(a.Value(i)) }), nil
	case *array.Float32:
		return appendUint32(a.IsNull, func(i int) uint32 { return canonicalFloat32(a.Value(i)) }), nil

	case *array.Int64:
		return appendUint64(a.IsNull, func(i int) uint64 { return uint64(a.Value(i)) }), nil
	case *array.Uint64:
		return appendUint64(a.IsNull, a.Value), nil
	case *array.Date64:
		return appendUint64(a.IsNull, func(i int) uint64 { return uint64(a.Value(i)) }), nil
	case *array.Time64:
		return appendUint64(a.IsNull, func(i int) uint64 { return uint64(a.Value(i)) }), nil
	case *array.Timestamp:
		return appendUint64(a.IsNull, func(i int) uint64 { return uint64(a.Value(i)) }), nil
	case *array.Duration:
		return appendUint64(a.IsNull, func(i int) uint64 { return uint64(a.Value(i)) }), nil
	case *array.Float64:
		return appendUint64(a.IsNull, func(i int) uint64 { return canonicalFloat64(a.Value(i)) }), nil

	case *array.Decimal128:
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullSentinel)
				return
			}
			v := a.Value(i)
			var b [16]byte
			binary.LittleEndian.PutUint64(b[:8], v.LowBits())
			binary.LittleEndian.PutUint64(b[8:], uint64(v.HighBits()))
			w.Write(b[:])
		}, nil

	case *array.String:
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullSentinel)
				return
			}
			w.Write(unsafecast.StringToBytes(a.Value(i)))
		}, nil

	case *array.LargeString:
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullSentinel)
				return
			}
			w.Write(unsafecast.StringToBytes(a.Value(i)))
		}, nil

	case *array.Binary:
		return appendBytes(a.IsNull, a.Value), nil
	case *array.LargeBinary:
		return appendBytes(a.IsNull, a.Value), nil
	case *array.FixedSizeBinary:
		return appendBytes(a.IsNull, a.Value), nil

	case *array.Null:
		return func(i int, w io.Writer) {
			w.Write(nullSentinel)
		}, nil

	case *array.List:
		elem, err := compileAppend(a.ListValues(), depth+1)
		if err != nil {
			return nil, err
		}
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullListSentinel)
				return
			}
			beg, end := a.ValueOffsets(i)
			if beg == end {
				w.Write(emptyListSentinel)
				return
			}
			for j := beg; j < end; j++ {
				elem(int(j), w)
			}
		}, nil

	case *array.LargeList:
		elem, err := compileAppend(a.ListValues(), depth+1)
		if err != nil {
			return nil, err
		}
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullListSentinel)
				return
			}
			beg, end := a.ValueOffsets(i)
			if beg == end {
				w.Write(emptyListSentinel)
				return
			}
			for j := beg; j < end; j++ {
				elem(int(j), w)
			}
		}, nil

	case *array.FixedSizeList:
		elem, err := compileAppend(a.ListValues(), depth+1)
		if err != nil {
			return nil, err
		}
		size := int(a.DataType().(*arrow.FixedSizeListType).Len())
		offset := a.Data().Offset()
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullListSentinel)
				return
			}
			if size == 0 {
				w.Write(emptyListSentinel)
				return
			}
			beg := (offset + i) * size
			for j := beg; j < beg+size; j++ {
				elem(j, w)
			}
		}, nil

	case *array.Struct:
		fields := make([]appendRowFunc, a.NumField())
		for f := range fields {
			field, err := compileAppend(a.Field(f), depth+1)
			if err != nil {
				return nil, err
			}
			fields[f] = field
		}
		return func(i int, w io.Writer) {
			if a.IsNull(i) {
				w.Write(nullStructSentinel)
				return
			}
			for _, f := range fields {
				f(i, w)
			}
		}, nil

	default:
		return nil, fmt.Errorf("rowhash: cannot hash column of type %s: %w", col.DataType(), ErrTypeUnsupported)
	}
}

func appendUint16(isNull func(int) bool, value func(int) uint16) appendRowFunc {
	return func(i int, w io.Writer) {
		if isNull(i) {
			w.Write(nullSentinel)
			return
		}
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], value(i))
		w.Write(b[:])
	}
}

func appendUint32(isNull func(int) bool, value func(int) uint32) appendRowFunc {
	return func(i int, w io.Writer) {
		if isNull(i) {
			w.Write(nullSentinel)
			return
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], value(i))
		w.Write(b[:])
	}
}

func appendUint64(isNull func(int) bool, value func(int) uint64) appendRowFunc {
	return func(i int, w io.Writer) {
		if isNull(i) {
			w.Write(nullSentinel)
			return
		}
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], value(i))
		w.Write(b[:])
	}
}

func appendBytes(isNull func(int) bool, value func(int) []byte) appendRowFunc {
	return func(i int, w io.Writer) {
		if isNull(i) {
			w.Write(nullSentinel)
			return
		}
		w.Write(value(i))
	}
}

// compileAppendColumns compiles all columns of a record up front so that
// type errors surface before output allocation.
func compileAppendColumns(input arrow.Record) ([]appendRowFunc, error) {
	funcs := make([]appendRowFunc, input.NumCols())
	for i, col := range input.Columns() {
		f, err := compileAppend(col, 0)
		if err != nil {
			return nil, fmt.Errorf("column %d (%s): %w", i, input.Schema().Field(i).Name, err)
		}
		funcs[i] = f
	}
	return funcs, nil
}
