package main

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/olekukonko/tablewriter"

	"github.com/tablekit/rowhash"
	"github.com/tablekit/rowhash/internal/debug"
)

var algorithms = map[string]rowhash.Algorithm{
	"murmur3":         rowhash.HashMurmur3,
	"murmur3_x64_128": rowhash.HashMurmur3X64_128,
	"spark_murmur3":   rowhash.HashSparkMurmur3,
	"xxhash64":        rowhash.HashXXHash64,
	"md5":             rowhash.HashMD5,
	"sha1":            rowhash.HashSHA1,
	"sha224":          rowhash.HashSHA224,
	"sha256":          rowhash.HashSHA256,
	"sha384":          rowhash.HashSHA384,
	"sha512":          rowhash.HashSHA512,
}

type sumFlags struct {
	_         struct{} `help:"Hash each row of a CSV file (optionally gzipped) and print the row hashes"`
	Algorithm string   `flag:"-a,--algorithm" help:"Hash algorithm: murmur3, murmur3_x64_128, spark_murmur3, xxhash64, md5, sha1, sha224, sha256, sha384, sha512" default:"murmur3"`
	Seed      uint     `flag:"-s,--seed" help:"Seed of the first column; ignored by the digest algorithms" default:"0"`
	Debug     bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
}

func sumCommand(flags sumFlags, path string) {
	debug.Toggle(flags.Debug)

	algorithm, ok := algorithms[flags.Algorithm]
	if !ok {
		perrorf("unknown algorithm: %s", flags.Algorithm)
		os.Exit(1)
	}

	header, rows, err := readCSV(path)
	if err != nil {
		perrorf("could not read %s: %s", path, err)
		os.Exit(1)
	}

	record, err := buildRecord(header, rows)
	if err != nil {
		perrorf("could not build table from %s: %s", path, err)
		os.Exit(1)
	}
	defer record.Release()

	hashes, err := rowhash.Hash(context.Background(), record, algorithm, rowhash.Seed(flags.Seed))
	if err != nil {
		perrorf("could not hash %s: %s", path, err)
		os.Exit(1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	if len(hashes) == 2 {
		table.SetHeader(append(header, flags.Algorithm+"_hi", flags.Algorithm+"_lo"))
	} else {
		table.SetHeader(append(header, flags.Algorithm))
	}
	for i, row := range rows {
		line := append([]string{}, row...)
		for _, h := range hashes {
			line = append(line, formatHash(h, i))
		}
		table.Append(line)
	}
	table.Render()
}

func formatHash(col arrow.Array, i int) string {
	switch a := col.(type) {
	case *array.Uint32:
		return fmt.Sprintf("%08x", a.Value(i))
	case *array.Uint64:
		return fmt.Sprintf("%016x", a.Value(i))
	case *array.String:
		return a.Value(i)
	default:
		return fmt.Sprintf("%v", col)
	}
}
