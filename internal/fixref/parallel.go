package fixref

import (
	"runtime"
	"sync"

	"github.com/huangyh09/xcltk/internal/vcf"
)

// workItem holds a parsed record ready for reconciliation.
type workItem struct {
	seq int
	rec *vcf.Record
}

// workResult is the reconciliation output for a single record.
type workResult struct {
	seq     int
	rec     *vcf.Record
	outcome Outcome
}

// reconcileParallel reconciles work items using a pool of workers, each
// querying the reference independently. Results arrive on the returned
// channel in completion order, not sequence order; use orderedCollect to
// consume them in input order. If workers is 0, runtime.NumCPU() is used.
func (r *Runner) reconcileParallel(items <-chan workItem, workers int) <-chan workResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- workResult{
					seq:     item.seq,
					rec:     item.rec,
					outcome: r.reconcileOne(item.rec),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// orderedCollect calls fn for each result in sequence-number order. It
// buffers out-of-order results in a pending map and emits them as soon as
// the next expected sequence number is available. Blocks until the results
// channel is closed.
func orderedCollect(results <-chan workResult, fn func(workResult) error) error {
	pending := make(map[int]workResult)
	nextSeq := 0

	for r := range results {
		pending[r.seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
