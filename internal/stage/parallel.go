package stage

import (
	"cmp"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
)

// getWorkers returns Meta.Workers, or the CPU count when unset.
func getWorkers(meta *Meta) int {
	if meta != nil && meta.Workers > 0 {
		return meta.Workers
	}
	return max(runtime.NumCPU(), 1)
}

// SortEnvelopeErrors orders errors by stage, locator, then message.
func SortEnvelopeErrors(env *Envelope) {
	if env == nil {
		return
	}
	slices.SortFunc(env.Errors, func(a, b Error) int {
		return cmp.Or(
			cmp.Compare(a.Stage, b.Stage),
			cmp.Compare(a.Locator, b.Locator),
			cmp.Compare(a.Message, b.Message),
		)
	})
}

// SortEnvelopeWarnings orders warnings by locator, code, then message.
func SortEnvelopeWarnings(env *Envelope) {
	if env == nil {
		return
	}
	slices.SortStableFunc(env.Warnings, func(a, b Warning) int {
		return cmp.Or(
			cmp.Compare(a.Locator, b.Locator),
			cmp.Compare(a.Code, b.Code),
			cmp.Compare(a.Message, b.Message),
		)
	})
}

// runIndexed calls fn for every index in [0,n) on at most workers goroutines.
// Result i is fn(i), whatever order the calls finish in.
func runIndexed[T any](n, workers int, fn func(int) T) []T {
	out := make([]T, n)
	if n == 0 {
		return out
	}
	workers = min(max(workers, 1), n)
	var next atomic.Int64
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				out[i] = fn(i)
			}
		}()
	}
	wg.Wait()
	return out
}
