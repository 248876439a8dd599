package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"
	"github.com/klauspost/compress/gzip"
)

// readCSV reads a CSV file with a header line, transparently decompressing
// files with a .gz suffix.
func readCSV(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		z, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		defer z.Close()
		r = z
	}
	return parseCSV(r)
}

func parseCSV(r io.Reader) (header []string, rows [][]string, err error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("missing header line")
	}
	return records[0], records[1:], nil
}

// buildRecord converts string cells into an arrow record. Each column gets
// the narrowest type that fits all of its values: int64, then float64, then
// string. Empty cells become nulls.
func buildRecord(header []string, rows [][]string) (arrow.Record, error) {
	fields := make([]arrow.Field, len(header))
	cols := make([]arrow.Array, len(header))

	for c, name := range header {
		values := make([]string, len(rows))
		for i, row := range rows {
			if c >= len(row) {
				return nil, fmt.Errorf("row %d has %d cells, expected %d", i+1, len(row), len(header))
			}
			values[i] = row[c]
		}
		dt, col := buildColumn(values)
		fields[c] = arrow.Field{Name: name, Type: dt, Nullable: true}
		cols[c] = col
	}

	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(len(rows))), nil
}

func buildColumn(values []string) (arrow.DataType, arrow.Array) {
	ints := true
	floats := true
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			ints = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			floats = false
		}
	}

	mem := memory.DefaultAllocator
	switch {
	case ints:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for _, v := range values {
			if v == "" {
				b.AppendNull()
			} else {
				i, _ := strconv.ParseInt(v, 10, 64)
				b.Append(i)
			}
		}
		return arrow.PrimitiveTypes.Int64, b.NewInt64Array()
	case floats:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for _, v := range values {
			if v == "" {
				b.AppendNull()
			} else {
				f, _ := strconv.ParseFloat(v, 64)
				b.Append(f)
			}
		}
		return arrow.PrimitiveTypes.Float64, b.NewFloat64Array()
	default:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for _, v := range values {
			if v == "" {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return arrow.BinaryTypes.String, b.NewStringArray()
	}
}
