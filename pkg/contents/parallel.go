package contents

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// batchSize is the number of lines handed to a worker at once.
const batchSize = 4096

// CountParallel is the same as Count, but it spreads the
// parsing of lines across the given number of workers. Each
// worker keeps its own Counts which are summed once every
// line has been read.
func CountParallel(ctx context.Context, r io.Reader, workers int) (Counts, error) {
	if workers <= 1 {
		return Count(ctx, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logr.FromContextOrDiscard(ctx).WithValues("workers", workers)
	log.V(1).Info("counting contents index in parallel")

	eg, egCtx := errgroup.WithContext(ctx)
	batches := make(chan []string, workers)

	// reader
	eg.Go(func() error {
		defer close(batches)
		scanner, splitter := newScanner(r, maxLineSize)
		batch := make([]string, 0, batchSize)
		var lines int
		for scanner.Scan() {
			lines++
			batch = append(batch, scanner.Text())
			if len(batch) < batchSize {
				continue
			}
			if err := egCtx.Err(); err != nil {
				return err
			}
			select {
			case batches <- batch:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			batch = make([]string, 0, batchSize)
		}
		if err := scanner.Err(); err != nil {
			log.Error(err, "failed to read contents index", "line", lines+splitter.skipped)
			return fmt.Errorf("reading line %d: %w", lines+splitter.skipped+1, err)
		}
		if splitter.skipped > 0 {
			log.Info("skipped overlong lines", "count", splitter.skipped, "max", maxLineSize)
		}
		if len(batch) > 0 {
			select {
			case batches <- batch:
			case <-egCtx.Done():
				return egCtx.Err()
			}
		}
		return nil
	})

	partitions := make([]Counts, workers)
	for i := range partitions {
		partitions[i] = Counts{}
		eg.Go(func() error {
			for batch := range batches {
				for _, line := range batch {
					partitions[i].Add(line)
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	counts := Counts{}
	for _, p := range partitions {
		counts.Merge(p)
	}
	log.V(1).Info("counted contents index", "packages", len(counts), "files", counts.Total())
	return counts, nil
}
