// Package pipeline fans index-disjoint work out over a bounded set of goroutines.
package pipeline

import "golang.org/x/sync/errgroup"

// DefaultWorkers is the minimum amount of workers, one worker runs inline.
const DefaultWorkers = 1

// Range splits [0, n) into contiguous chunks, one per worker, and calls fn for every index.
// fn must only write state owned by its index.
func Range(workersCount int, n int, fn func(i int)) {
	workersCount = max(DefaultWorkers, workersCount)
	if workersCount == 1 || n <= 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	chunkSize := (n + workersCount - 1) / workersCount

	var g errgroup.Group
	g.SetLimit(workersCount)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}
