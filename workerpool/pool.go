// Package workerpool implements component J: a self-dispatching chunked
// pixel work queue. Each worker goroutine atomically reserves a chunk of
// pixel indices from a shared cursor and processes them independently —
// the same semaphore-bounded, WaitGroup-joined fan-out shape as the
// teacher's genetic.Engine parallel evaluation step (genetic/engine.go's
// initializePool), adapted from "evaluate N candidates" to "shade N
// pixel indices".
package workerpool

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// chunkSizes is the exact cascade from the source's per-frame chunk-size
// pick (src/rt/worker.c:470-509): grows as large as 262144 pixels when
// there's abundant work, shrinks to 1 when there's little, targeting at
// least 8 chunks per worker.
var chunkSizes = []int{262144, 65536, 16384, 4096, 1024, 256, 64, 16, 4, 1}

// ChunkSize picks the chunk size for totalWork pixels spread across
// workers workers, the largest cascade entry for which each worker would
// still receive at least 8 chunks.
func ChunkSize(totalWork, workers int) int {
	if workers < 1 {
		workers = 1
	}
	for _, size := range chunkSizes {
		chunks := (totalWork + size - 1) / size
		if chunks >= 8*workers {
			return size
		}
	}
	return 1
}

// PixelFunc processes one pixel index; index decomposition into (x, y)
// is the caller's concern (view's render methods own that, since they
// also know the incremental-mode stride).
type PixelFunc func(index int)

// Order selects how a worker enumerates the pixels within its chunk.
type Order int

const (
	TopDown Order = iota
	BottomUp
)

// Pool dispatches totalWork pixel indices across workers goroutines,
// each atomically reserving chunks from a shared cursor until the work
// queue is empty.
type Pool struct {
	Workers int
	Order   Order

	// RandomMode draws a uniform permutation of all pixel indices up
	// front and dispatches chunks over that permutation instead of the
	// identity order, the teacher-equivalent of genetic's perturbation
	// RNG seeding (engine.go's rand.NewPCG) applied to work order rather
	// than candidate mutation.
	RandomMode bool
	RNG        *rand.Rand
}

// Stats accumulates per-thread counters the way the source keeps them
// thread-local and sums them into the rt instance only once the frame
// completes (§4.J).
type Stats struct {
	Shots, Hits, Misses int64
}

func (s *Stats) Add(o Stats) {
	atomic.AddInt64(&s.Shots, o.Shots)
	atomic.AddInt64(&s.Hits, o.Hits)
	atomic.AddInt64(&s.Misses, o.Misses)
}

// Run dispatches [0, totalWork) to fn across p.Workers goroutines and
// blocks until every chunk has been processed, or until ctx is
// cancelled. §5's global stop_worker flag is modelled as ctx
// cancellation, checked once per chunk reservation (the same
// granularity the teacher's genetic.Engine checks ctx.Done() per
// generation): a worker mid-chunk finishes that chunk before noticing
// cancellation, matching "checked at each worker loop iteration."
// Returns true if every chunk was processed, false if cancelled early.
func (p *Pool) Run(ctx context.Context, totalWork int, fn PixelFunc) bool {
	if totalWork <= 0 {
		return true
	}
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	order := identityOrder(totalWork)
	if p.RandomMode {
		rng := p.RNG
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	chunk := ChunkSize(totalWork, workers)

	var cursor int64
	var cancelled atomic.Bool
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					cancelled.Store(true)
					return
				default:
				}
				start := atomic.AddInt64(&cursor, int64(chunk)) - int64(chunk)
				if int(start) >= totalWork {
					return
				}
				end := int(start) + chunk
				if end > totalWork {
					end = totalWork
				}
				dispatchChunk(order[start:end], p.Order, fn)
			}
		}()
	}
	wg.Wait()
	return !cancelled.Load()
}

func dispatchChunk(indices []int, order Order, fn PixelFunc) {
	if order == BottomUp {
		for i := len(indices) - 1; i >= 0; i-- {
			fn(indices[i])
		}
		return
	}
	for _, idx := range indices {
		fn(idx)
	}
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
