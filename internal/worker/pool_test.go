package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_PreservesInputOrder(t *testing.T) {
	items := []int{5, 3, 9, 1, 7, 2}

	results := Run(context.Background(), 3, items, func(_ context.Context, n int) int {
		// Stagger so completion order differs from input order
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, n := range items {
		if results[i] != n*10 {
			t.Errorf("result[%d] = %d, want %d", i, results[i], n*10)
		}
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	const width = 3
	var active, peak int64
	var mu sync.Mutex

	items := make([]int, 20)
	Run(context.Background(), width, items, func(_ context.Context, _ int) struct{} {
		n := atomic.AddInt64(&active, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return struct{}{}
	})

	if peak > width {
		t.Errorf("observed %d concurrent workers, want at most %d", peak, width)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	results := Run(context.Background(), 3, nil, func(_ context.Context, _ int) int { return 1 })
	if results != nil {
		t.Errorf("expected nil results for empty input, got %v", results)
	}
}

func TestRun_ZeroWidthFallsBackToOne(t *testing.T) {
	results := Run(context.Background(), 0, []int{1, 2, 3}, func(_ context.Context, n int) int { return n })
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestRun_CanceledContextStopsFeeding(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	items := make([]int, 100)
	Run(ctx, 2, items, func(_ context.Context, _ int) struct{} {
		atomic.AddInt64(&calls, 1)
		return struct{}{}
	})

	// Workers may drain a handful of queued items but not the whole batch
	if calls == 100 {
		t.Error("expected canceled context to stop feeding jobs")
	}
}
