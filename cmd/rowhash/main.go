// This program hashes the rows of delimited text files with the rowhash
// engine, mostly useful to eyeball hash stability across systems or to spot
// check a table against another engine's output.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/segmentio/cli"
)

func main() {
	cli.Exec(cli.CommandSet{
		"sum": cli.Command(sumCommand),
	})
}

func perrorf(format string, args ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}
