package util

import (
	"context"
	"sync"
)

// Parallel calls fn for every input with at most workerLimit calls in
// flight. It returns one error per input, in input order; a failure does
// not stop the remaining inputs. Inputs not yet started when ctx is
// cancelled get ctx.Err().
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) []error {
	errs := make([]error, len(inputs))
	if len(inputs) == 0 {
		return errs
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}

	tasks := make(chan int)

	// workers
	var wg sync.WaitGroup
	for i := 0; i < min(workerLimit, len(inputs)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				errs[idx] = fn(ctx, inputs[idx])
			}
		}()
	}

	// feed tasks
	for idx := range inputs {
		if err := ctx.Err(); err != nil {
			for rest := idx; rest < len(inputs); rest++ {
				errs[rest] = err
			}
			break
		}
		tasks <- idx
	}
	close(tasks)

	wg.Wait()
	return errs
}
