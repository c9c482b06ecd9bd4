package solid

import (
	"runtime"
	"sync"
)

// ParallelFor calls fn(i) for every i in [0,n) across runtime.NumCPU()
// goroutines, each owning a contiguous chunk, and blocks until all are
// done. Used for the per-particle kernels spec.md §5 allows to run fully
// parallel (no node is touched by more than one particle's stress
// update). No worker-pool library appears anywhere in the retrieved pack,
// so this is the one deliberately stdlib-only concern in this module.
func ParallelFor(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if lo >= n {
			break
		}
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}
