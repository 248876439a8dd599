// Package parallel runs data-parallel maps over row ranges. Rows are
// independent, so the only coordination needed is waiting for all chunks
// to finish.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// Number of chunks handed to each worker; more than one so that uneven
	// chunk costs still balance across the pool.
	chunksPerWorker = 4

	// Below this many rows per chunk the goroutine handoff costs more than
	// the work it distributes.
	minChunkLength = 512
)

// Range splits [0,n) into contiguous chunks and calls f on each from a
// bounded pool of goroutines. f must be safe to call concurrently on
// disjoint ranges. The first error observed cancels the remaining chunks
// and is returned to the caller.
func Range(ctx context.Context, n, workers int, f func(lo, hi int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers*chunksPerWorker - 1) / (workers * chunksPerWorker)
	if chunk < minChunkLength {
		chunk = minChunkLength
	}
	if chunk >= n || workers == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return f(0, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(lo, hi)
		})
	}
	return g.Wait()
}
