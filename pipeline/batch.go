package pipeline

import (
	"context"
	"sync"
)

// Result pairs a batch request with its outcome.
type Result struct {
	Request Request
	Outcome *Outcome
	Err     error
}

// SubmitAll runs reqs with up to workers concurrent submissions and returns
// the results in request order. A failed submission does not stop the
// others; cancelling ctx stops requests that have not started yet.
func (s *Service) SubmitAll(ctx context.Context, reqs []Request, workers int) []Result {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	results := make([]Result, len(reqs))
	in := make(chan int)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range in {
				out, err := s.Submit(ctx, reqs[i])
				results[i] = Result{Request: reqs[i], Outcome: out, Err: err}
			}
		}()
	}

	for i := range reqs {
		if ctx.Err() != nil {
			results[i] = Result{Request: reqs[i], Err: asPipelineError(ctx.Err())}
			continue
		}
		select {
		case in <- i:
		case <-ctx.Done():
			results[i] = Result{Request: reqs[i], Err: asPipelineError(ctx.Err())}
		}
	}
	close(in)
	wg.Wait()
	return results
}
