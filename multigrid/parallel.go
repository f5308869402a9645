package multigrid

import (
	"sync"

	"github.com/jbcm627/elliptic-solver/utils"
)

// parallelFor runs task over [0, n) split across the solver's worker
// count. Each invocation is a bulk synchronous kernel: all workers join
// before return, so consecutive kernels are ordered. The worker id lets
// reductions accumulate into per-worker partial slots.
func (fas *FASMultigrid) parallelFor(n int, task func(lo, hi, worker int)) {
	var (
		np = fas.NumWorkers
	)
	if np > n {
		np = 1
	}
	if np <= 1 {
		task(0, n, 0)
		return
	}
	pm, ok := fas.partitions[n]
	if !ok {
		pm = utils.NewPartitionMap(np, n)
		fas.partitions[n] = pm
	}
	var wg sync.WaitGroup
	for w := 0; w < np; w++ {
		lo, hi := pm.GetBucketRange(w)
		wg.Add(1)
		go func(lo, hi, w int) {
			defer wg.Done()
			task(lo, hi, w)
		}(lo, hi, w)
	}
	wg.Wait()
}

// parallelSum accumulates a pointwise value over [0, n).
func (fas *FASMultigrid) parallelSum(n int, point func(idx int) float64) (sum float64) {
	partials := make([]float64, fas.NumWorkers)
	fas.parallelFor(n, func(lo, hi, w int) {
		var s float64
		for idx := lo; idx < hi; idx++ {
			s += point(idx)
		}
		partials[w] = s
	})
	for _, s := range partials {
		sum += s
	}
	return
}

// parallelMax reduces the maximum of a pointwise value over [0, n).
func (fas *FASMultigrid) parallelMax(n int, point func(idx int) float64) (max float64) {
	partials := make([]float64, fas.NumWorkers)
	fas.parallelFor(n, func(lo, hi, w int) {
		var m float64
		for idx := lo; idx < hi; idx++ {
			if v := point(idx); v > m {
				m = v
			}
		}
		partials[w] = m
	})
	for _, m := range partials {
		if m > max {
			max = m
		}
	}
	return
}
