package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
)

// cascade mirrors the unexported chunkSizes table so the test can check
// that ChunkSize picked the *largest* cascade entry meeting the target,
// not merely some entry that happens to satisfy it.
var cascade = []int{262144, 65536, 16384, 4096, 1024, 256, 64, 16, 4, 1}

func TestChunkSizeTargetsAtLeastEightChunksPerWorker(t *testing.T) {
	cases := []struct {
		totalWork, workers int
	}{
		{1, 1},
		{8, 1},
		{100, 1},
		{1_000_000, 4},
		{1_000_000, 1},
		{262144 * 100, 2},
	}
	for _, c := range cases {
		got := ChunkSize(c.totalWork, c.workers)
		workers := c.workers
		if workers < 1 {
			workers = 1
		}
		chunks := (c.totalWork + got - 1) / got
		if chunks < 8*workers && got != 1 {
			t.Errorf("ChunkSize(%d, %d) = %d gives only %d chunks, fewer than 8 per worker", c.totalWork, c.workers, got, chunks)
		}
		// No larger cascade entry should also satisfy the target; ChunkSize
		// must return the largest one that does.
		for _, size := range cascade {
			if size <= got {
				continue
			}
			largerChunks := (c.totalWork + size - 1) / size
			if largerChunks >= 8*workers {
				t.Errorf("ChunkSize(%d, %d) = %d, but larger size %d also meets the target", c.totalWork, c.workers, got, size)
			}
		}
	}
}

func TestRunVisitsEveryIndexExactlyOnce(t *testing.T) {
	const n = 10000
	seen := make([]int32, n)
	p := &Pool{Workers: 8}
	ok := p.Run(context.Background(), n, func(index int) {
		atomic.AddInt32(&seen[index], 1)
	})
	if !ok {
		t.Fatalf("Run reported cancellation on an uncancelled context")
	}
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want exactly 1", i, v)
		}
	}
}

func TestRunRandomModeIsAPermutation(t *testing.T) {
	const n = 2000
	seen := make([]int32, n)
	p := &Pool{Workers: 4, RandomMode: true}
	p.Run(context.Background(), n, func(index int) {
		atomic.AddInt32(&seen[index], 1)
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("random-mode index %d visited %d times, want exactly 1", i, v)
		}
	}
}

func TestRunOrderBottomUpReversesWithinChunk(t *testing.T) {
	const n = 100000
	chunk := ChunkSize(n, 1)
	p := &Pool{Workers: 1, Order: BottomUp}
	var got []int
	p.Run(context.Background(), n, func(index int) {
		got = append(got, index)
	})
	if len(got) != n {
		t.Fatalf("got %d indices, want %d", len(got), n)
	}
	// A single worker reserves chunks in ascending order; within each
	// chunk, BottomUp must visit indices in descending order.
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		for i := start; i < end-1; i++ {
			if got[i] <= got[i+1] {
				t.Fatalf("chunk [%d,%d) not descending at position %d: %d then %d", start, end, i, got[i], got[i+1])
			}
		}
		if got[start] != end-1 || got[end-1] != start {
			t.Fatalf("chunk [%d,%d) bounds wrong: got %d..%d", start, end, got[start], got[end-1])
		}
	}
}

func TestRunCancellationStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pool{Workers: 4}
	var calls int32
	ok := p.Run(ctx, 100000, func(index int) {
		atomic.AddInt32(&calls, 1)
	})
	if ok {
		t.Fatalf("Run reported success despite a pre-cancelled context")
	}
}

func TestRunZeroWorkIsANoop(t *testing.T) {
	p := &Pool{Workers: 4}
	called := false
	ok := p.Run(context.Background(), 0, func(index int) { called = true })
	if !ok || called {
		t.Fatalf("Run(0 work) should be a no-op returning true, got ok=%v called=%v", ok, called)
	}
}

func TestStatsAddIsAtomicAcrossThreads(t *testing.T) {
	total := &Stats{}
	const workers = 16
	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			total.Add(Stats{Shots: 10, Hits: 3, Misses: 7})
			done <- struct{}{}
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}
	if total.Shots != 160 || total.Hits != 48 || total.Misses != 112 {
		t.Errorf("got %+v, want Shots=160 Hits=48 Misses=112", total)
	}
}
