package rowhash

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/float16"
	"github.com/apache/arrow/go/v16/arrow/memory"

	"github.com/tablekit/rowhash/internal/quick"
)

var testAlgorithms = []Algorithm{
	HashMurmur3,
	HashMurmur3X64_128,
	HashSparkMurmur3,
	HashXXHash64,
	HashMD5,
	HashSHA1,
	HashSHA224,
	HashSHA256,
	HashSHA384,
	HashSHA512,
}

var fixedWidthAlgorithms = []Algorithm{
	HashMurmur3,
	HashMurmur3X64_128,
	HashXXHash64,
}

func record(t *testing.T, cols ...arrow.Array) arrow.Record {
	t.Helper()
	n := 0
	if len(cols) > 0 {
		n = cols[0].Len()
	}
	return recordWithRows(t, n, cols...)
}

func recordWithRows(t *testing.T, n int, cols ...arrow.Array) arrow.Record {
	t.Helper()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: fmt.Sprintf("c%d", i), Type: c.DataType(), Nullable: true}
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(n))
}

func int32Col(t *testing.T, values []int32, valid []bool) arrow.Array {
	t.Helper()
	b := array.NewInt32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewInt32Array()
}

func int64Col(t *testing.T, values []int64, valid []bool) arrow.Array {
	t.Helper()
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewInt64Array()
}

func float64Col(t *testing.T, values []float64, valid []bool) arrow.Array {
	t.Helper()
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewFloat64Array()
}

func stringCol(t *testing.T, values []string, valid []bool) arrow.Array {
	t.Helper()
	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewStringArray()
}

func binaryCol(t *testing.T, values [][]byte) arrow.Array {
	t.Helper()
	b := array.NewBinaryBuilder(memory.DefaultAllocator, arrow.BinaryTypes.Binary)
	defer b.Release()
	for _, v := range values {
		b.Append(v)
	}
	return b.NewBinaryArray()
}

func TestDeterminism(t *testing.T) {
	input := quick.RandomRecord(0, 1000)
	defer input.Release()

	for _, algorithm := range testAlgorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			first, err := Hash(context.Background(), input, algorithm, Seed(42))
			if err != nil {
				t.Fatal(err)
			}
			second, err := Hash(context.Background(), input, algorithm, Seed(42))
			if err != nil {
				t.Fatal(err)
			}
			if len(first) != len(second) {
				t.Fatalf("output column count mismatch: %d != %d", len(first), len(second))
			}
			for i := range first {
				if !array.Equal(first[i], second[i]) {
					t.Errorf("output column %d differs between two identical calls", i)
				}
			}
		})
	}
}

func TestSeedSensitivity(t *testing.T) {
	input := quick.RandomRecord(1, 500)
	defer input.Release()

	for _, algorithm := range append([]Algorithm{HashSparkMurmur3}, fixedWidthAlgorithms...) {
		t.Run(algorithm.String(), func(t *testing.T) {
			a, err := Hash(context.Background(), input, algorithm, Seed(1))
			if err != nil {
				t.Fatal(err)
			}
			b, err := Hash(context.Background(), input, algorithm, Seed(2))
			if err != nil {
				t.Fatal(err)
			}
			if array.Equal(a[0], b[0]) {
				t.Error("two different seeds produced identical hashes for every row")
			}
		})
	}
}

func TestColumnOrderSensitivity(t *testing.T) {
	a := int64Col(t, []int64{1, 2, 3, 4}, nil)
	b := int64Col(t, []int64{5, 6, 7, 8}, nil)
	ab := record(t, a, b)
	defer ab.Release()
	ba := record(t, b, a)
	defer ba.Release()

	for _, algorithm := range fixedWidthAlgorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			first, err := Hash(context.Background(), ab, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			second, err := Hash(context.Background(), ba, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			if array.Equal(first[0], second[0]) {
				t.Error("swapping two distinct columns did not change any row hash")
			}
		})
	}
}

func TestZeroColumnTable(t *testing.T) {
	const n = 5
	const seed = 123456789
	input := recordWithRows(t, n)
	defer input.Release()

	hashes, err := MurmurHash3X86_32(context.Background(), input, seed)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if hashes.Value(i) != seed {
			t.Fatalf("row %d: got %d, want the seed %d", i, hashes.Value(i), seed)
		}
	}

	h64, err := XXHash64(context.Background(), input, seed)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if h64.Value(i) != seed {
			t.Fatalf("row %d: got %d, want the seed %d", i, h64.Value(i), seed)
		}
	}

	hi, lo, err := MurmurHash3X64_128(context.Background(), input, seed)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if hi.Value(i) != seed || lo.Value(i) != seed {
			t.Fatalf("row %d: got (%d, %d), want the seed in both halves", i, hi.Value(i), lo.Value(i))
		}
	}
}

func TestZeroRowTable(t *testing.T) {
	input := record(t, int64Col(t, nil, nil))
	defer input.Release()

	for _, algorithm := range testAlgorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			hashes, err := Hash(context.Background(), input, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			for _, h := range hashes {
				if h.Len() != 0 {
					t.Errorf("expected an empty output column, got %d rows", h.Len())
				}
			}
		})
	}
}

// Two arrays may carry different physical bytes behind their null slots;
// hashes must not observe them.
func TestNullGarbageDeterminism(t *testing.T) {
	withGarbage := func(garbage int32) arrow.Array {
		valid := []byte{0x01} // row 0 valid, row 1 null
		values := make([]byte, 8)
		binary.LittleEndian.PutUint32(values[0:], 7)
		binary.LittleEndian.PutUint32(values[4:], uint32(garbage))
		data := array.NewData(arrow.PrimitiveTypes.Int32, 2,
			[]*memory.Buffer{memory.NewBufferBytes(valid), memory.NewBufferBytes(values)}, nil, 1, 0)
		defer data.Release()
		return array.NewInt32Data(data)
	}

	a := record(t, withGarbage(0))
	defer a.Release()
	b := record(t, withGarbage(-559038737))
	defer b.Release()

	for _, algorithm := range testAlgorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			first, err := Hash(context.Background(), a, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			second, err := Hash(context.Background(), b, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			for i := range first {
				if !array.Equal(first[i], second[i]) {
					t.Errorf("output column %d observed garbage bytes behind a null slot", i)
				}
			}
		})
	}
}

func TestFloatCanonicalization(t *testing.T) {
	nan1 := math.NaN()
	nan2 := math.Float64frombits(0x7ff8000000000001)
	a := record(t, float64Col(t, []float64{nan1, 0.0, 1.5}, nil))
	defer a.Release()
	b := record(t, float64Col(t, []float64{nan2, math.Copysign(0, -1), 1.5}, nil))
	defer b.Release()

	for _, algorithm := range testAlgorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			first, err := Hash(context.Background(), a, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			second, err := Hash(context.Background(), b, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			if !array.Equal(first[0], second[0]) {
				t.Error("NaN payloads or zero signs leaked into the hash")
			}
		})
	}
}

func TestNullDistinctFromValues(t *testing.T) {
	withNull := record(t, int32Col(t, []int32{0, 1}, []bool{false, true}))
	defer withNull.Release()
	withZero := record(t, int32Col(t, []int32{0, 1}, nil))
	defer withZero.Release()

	hashesNull, err := MurmurHash3X86_32(context.Background(), withNull, 0)
	if err != nil {
		t.Fatal(err)
	}
	hashesZero, err := MurmurHash3X86_32(context.Background(), withZero, 0)
	if err != nil {
		t.Fatal(err)
	}
	if hashesNull.Value(0) == hashesZero.Value(0) {
		t.Error("a null element hashed like the value 0")
	}
	if hashesNull.Value(1) != hashesZero.Value(1) {
		t.Error("a non-null row was affected by nulls elsewhere in the column")
	}
}

// A struct column hashes exactly like its fields laid out as top level
// columns: both chain field hashes in declared order from the same seed.
func TestStructMatchesColumnChaining(t *testing.T) {
	a := int32Col(t, []int32{1, 2, 3}, nil)
	b := stringCol(t, []string{"x", "y", "z"}, nil)

	st := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		arrow.Field{Name: "b", Type: arrow.BinaryTypes.String, Nullable: true},
	)
	sb := array.NewStructBuilder(memory.DefaultAllocator, st)
	defer sb.Release()
	fa := sb.FieldBuilder(0).(*array.Int32Builder)
	fb := sb.FieldBuilder(1).(*array.StringBuilder)
	for i := 0; i < 3; i++ {
		sb.Append(true)
		fa.Append(int32(i + 1))
		fb.Append(string(rune('x' + i)))
	}
	structs := record(t, sb.NewStructArray())
	defer structs.Release()
	columns := record(t, a, b)
	defer columns.Release()

	first, err := MurmurHash3X86_32(context.Background(), structs, 7)
	if err != nil {
		t.Fatal(err)
	}
	second, err := MurmurHash3X86_32(context.Background(), columns, 7)
	if err != nil {
		t.Fatal(err)
	}
	if !array.Equal(first, second) {
		t.Error("struct column hashed differently from its fields as top level columns")
	}
}

// A one-element list row hashes like a plain value: the element is seeded by
// the incoming row state just like a top level column would be.
func TestSingleElementListMatchesValue(t *testing.T) {
	lb := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int64)
	defer lb.Release()
	vb := lb.ValueBuilder().(*array.Int64Builder)
	for _, v := range []int64{10, 20, 30} {
		lb.Append(true)
		vb.Append(v)
	}
	lists := record(t, lb.NewListArray())
	defer lists.Release()
	values := record(t, int64Col(t, []int64{10, 20, 30}, nil))
	defer values.Release()

	first, err := MurmurHash3X86_32(context.Background(), lists, 3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := MurmurHash3X86_32(context.Background(), values, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !array.Equal(first, second) {
		t.Error("single element lists hashed differently from plain values")
	}
}

// The same logical lists must hash identically regardless of the physical
// offsets they are stored behind.
func TestListOffsetLayoutEquivalence(t *testing.T) {
	build := func(lists [][]int64) arrow.Array {
		lb := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int64)
		defer lb.Release()
		vb := lb.ValueBuilder().(*array.Int64Builder)
		for _, l := range lists {
			lb.Append(true)
			for _, v := range l {
				vb.Append(v)
			}
		}
		return lb.NewListArray()
	}

	compact := build([][]int64{{1, 2}, {3}})
	padded := build([][]int64{{9, 9, 9}, {1, 2}, {3}})
	sliced := array.NewSlice(padded, 1, 3)

	a := record(t, compact)
	defer a.Release()
	b := record(t, sliced)
	defer b.Release()

	for _, algorithm := range testAlgorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			first, err := Hash(context.Background(), a, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			second, err := Hash(context.Background(), b, algorithm)
			if err != nil {
				t.Fatal(err)
			}
			for i := range first {
				if !array.Equal(first[i], second[i]) {
					t.Errorf("output column %d depends on the physical offset layout", i)
				}
			}
		})
	}
}

func TestEmptyListDistinctFromNullList(t *testing.T) {
	lb := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int64)
	defer lb.Release()
	lb.Append(true) // empty list
	lb.AppendNull() // null list
	input := record(t, lb.NewListArray())
	defer input.Release()

	hashes, err := MurmurHash3X86_32(context.Background(), input, 0)
	if err != nil {
		t.Fatal(err)
	}
	if hashes.Value(0) == hashes.Value(1) {
		t.Error("an empty list hashed like a null list")
	}
}

func TestTypeUnsupported(t *testing.T) {
	b := array.NewFloat16Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Append(float16.New(1.5))
	input := record(t, b.NewFloat16Array())
	defer input.Release()

	for _, algorithm := range testAlgorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			_, err := Hash(context.Background(), input, algorithm)
			if !errors.Is(err, ErrTypeUnsupported) {
				t.Errorf("got %v, want ErrTypeUnsupported", err)
			}
		})
	}
}

func TestMaxNestingDepth(t *testing.T) {
	var dt arrow.DataType = arrow.PrimitiveTypes.Int32
	for i := 0; i <= MaxNestingDepth; i++ {
		dt = arrow.ListOf(dt)
	}
	b := array.NewBuilder(memory.DefaultAllocator, dt)
	defer b.Release()
	input := recordWithRows(t, 0, b.NewArray())
	defer input.Release()

	_, err := Hash(context.Background(), input, HashMurmur3)
	if !errors.Is(err, ErrTypeUnsupported) {
		t.Errorf("got %v, want ErrTypeUnsupported for a schema nested too deep", err)
	}
}

// overrideRows wraps a record and reports a row count that disagrees with
// its columns, the way a hand-built record implementation can.
// array.NewRecord validates this invariant itself, so the wrapper is the
// only way to reach the engine's own check.
type overrideRows struct {
	arrow.Record
	rows int64
}

func (r overrideRows) NumRows() int64 { return r.rows }

func TestRowCountMismatch(t *testing.T) {
	input := record(t, int64Col(t, []int64{1, 2}, nil))
	defer input.Release()
	mismatched := overrideRows{Record: input, rows: 3}

	for _, algorithm := range []Algorithm{HashMurmur3, HashMD5} {
		t.Run(algorithm.String(), func(t *testing.T) {
			_, err := Hash(context.Background(), mismatched, algorithm)
			if !errors.Is(err, ErrRowCountMismatch) {
				t.Errorf("got %v, want ErrRowCountMismatch", err)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := quick.RandomRecord(2, 100)
	defer input.Release()

	_, err := Hash(ctx, input, HashMurmur3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	input := quick.RandomRecord(3, 10000)
	defer input.Release()

	for _, algorithm := range testAlgorithms {
		t.Run(algorithm.String(), func(t *testing.T) {
			sequential, err := Hash(context.Background(), input, algorithm, Parallelism(1))
			if err != nil {
				t.Fatal(err)
			}
			parallel, err := Hash(context.Background(), input, algorithm, Parallelism(8))
			if err != nil {
				t.Fatal(err)
			}
			for i := range sequential {
				if !array.Equal(sequential[i], parallel[i]) {
					t.Errorf("output column %d depends on the level of parallelism", i)
				}
			}
		})
	}
}

func BenchmarkMurmurHash3X86_32(b *testing.B) {
	benchmarkAlgorithm(b, HashMurmur3)
}

func BenchmarkXXHash64(b *testing.B) {
	benchmarkAlgorithm(b, HashXXHash64)
}

func BenchmarkSHA256(b *testing.B) {
	benchmarkAlgorithm(b, HashSHA256)
}

func benchmarkAlgorithm(b *testing.B, algorithm Algorithm) {
	input := quick.RandomRecord(0, 64*1024)
	defer input.Release()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hashes, err := Hash(ctx, input, algorithm)
		if err != nil {
			b.Fatal(err)
		}
		for _, h := range hashes {
			h.Release()
		}
	}
}
