package util

import "sync"

// Gather runs fn for every input concurrently and returns the results in
// input order. It joins all goroutines before returning, so callers can rely
// on every fn having completed even when only some results are inspected.
func Gather[T, R any](inputs []T, fn func(int, T) R) []R {
	if len(inputs) == 0 {
		return nil
	}

	results := make([]R, len(inputs))
	wg := sync.WaitGroup{}
	for i, item := range inputs {
		i, item := i, item
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fn(i, item)
		}()
	}
	wg.Wait()
	return results
}

// GatherIsolated is Gather for side-effecting fns whose panics must not
// escape to the caller or starve the other goroutines. It returns the
// recovered panic values, indexed like inputs, nil where fn finished
// normally.
func GatherIsolated[T any](inputs []T, fn func(int, T)) []any {
	return Gather(inputs, func(i int, item T) (recovered any) {
		defer func() {
			recovered = recover()
		}()
		fn(i, item)
		return nil
	})
}
