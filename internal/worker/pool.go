package worker

import (
	"context"
	"sync"
)

// Run executes fn for every item using at most width concurrent workers and
// blocks until all items have completed or permanently failed. Results are
// returned in input order, so Run doubles as the synchronization barrier
// between pipeline stages: nothing downstream observes a partial result set.
func Run[I any, O any](ctx context.Context, width int, items []I, fn func(context.Context, I) O) []O {
	if width <= 0 {
		width = 1
	}
	if len(items) == 0 {
		return nil
	}

	type indexed struct {
		idx  int
		item I
	}

	jobs := make(chan indexed)
	results := make([]O, len(items))

	var wg sync.WaitGroup
	for w := 0; w < width; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = fn(ctx, j.item)
			}
		}()
	}

feed:
	for i, item := range items {
		select {
		case <-ctx.Done():
			// Stop feeding; workers drain what was already queued.
			break feed
		case jobs <- indexed{idx: i, item: item}:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
