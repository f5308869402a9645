package multigrid

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLaplaceSolver builds a single-equation system with one Laplacian
// molecule carrying a unit density, as in the simplest trial problem.
func newLaplaceSolver(t *testing.T, n, minDepth, maxDepth, iters int) (fas *FASMultigrid, u *Grid) {
	u = NewGrid(n, n, n)
	st, _ := NewStencil(4, 1.0)
	fas, err := NewFASMultigrid([]*Grid{u}, []int{1}, minDepth, maxDepth, iters, 1.e-8, st)
	require.NoError(t, err)
	require.NoError(t, fas.AddAtomToEqn(Atom{Type: AtomLaplacian, UID: 0}, 0, 0))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				fas.SetPolySrcAtPt(0, 0, i, j, k, 1)
			}
		}
	}
	fas.InitializeRhoHierarchy()
	return
}

func TestLaplaceZeroGuess(t *testing.T) {
	// lap(u) = 0 from a zero guess is already converged; three V-cycles
	// must hold the residual at zero without error
	fas, u := newLaplaceSolver(t, 16, 2, 4, 10)
	require.NoError(t, fas.VCycles(3))
	assert.Less(t, fas.MaxResidual(fas.MaxDepth), 1.e-4)
	assert.Equal(t, 0., u.Max())
	assert.Equal(t, 0., u.Min())
}

func TestRhoHierarchy(t *testing.T) {
	var (
		n     = 16
		u     = NewGrid(n, n, n)
		st, _ = NewStencil(4, 1.0)
	)
	fas, err := NewFASMultigrid([]*Grid{u}, []int{2}, 2, 4, 10, 1.e-8, st)
	require.NoError(t, err)
	require.NoError(t, fas.AddAtomToEqn(Atom{Type: AtomLaplacian, UID: 0}, 0, 0))
	// molecule 0 gets a constant density, molecule 1 stays absent
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				fas.SetPolySrcAtPt(0, 0, i, j, k, 2.5)
			}
		}
	}
	fas.InitializeRhoHierarchy()
	for d := 0; d < fas.totalDepths; d++ {
		rho := fas.rhoH[0][0][d]
		require.True(t, rho.IsAllocated())
		// restriction preserves constants at every depth
		assert.InDelta(t, 2.5, rho.Min(), 1.e-12)
		assert.InDelta(t, 2.5, rho.Max(), 1.e-12)
		assert.False(t, fas.rhoH[0][1][d].IsAllocated())
	}
}

func TestFinestSourceInvariance(t *testing.T) {
	// the finest-level source is the physical right-hand side; a V-cycle
	// rebuilds only the coarser-level sources
	fas, u := newLaplaceSolver(t, 8, 1, 3, 5)
	r := rand.New(rand.NewSource(21))
	for idx := range u.Data {
		u.Data[idx] = 0.01 * (r.Float64() - 0.5)
	}
	var (
		src      = fas.coarseSrcH[0][fas.maxDepthIdx]
		snapshot = make([]float64, len(src.Data))
	)
	copy(snapshot, src.Data)
	require.NoError(t, fas.VCycle())
	assert.Equal(t, snapshot, src.Data)
}

func TestNoiseGuessDoesNotDivergeSilently(t *testing.T) {
	// a huge white-noise guess on lap(u) + u^3 = rho must either relax
	// or fail the line search; the residual never grows
	var (
		n     = 8
		u     = NewGrid(n, n, n)
		st, _ = NewStencil(4, 1.0)
	)
	fas, err := NewFASMultigrid([]*Grid{u}, []int{3}, 1, 3, 5, 1.e-8, st)
	require.NoError(t, err)
	require.NoError(t, fas.AddAtomToEqn(Atom{Type: AtomLaplacian, UID: 0}, 0, 0))
	require.NoError(t, fas.AddAtomToEqn(Atom{Type: AtomPoly, UID: 0, Value: 3}, 1, 0))
	h := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		s := math.Sin(2 * math.Pi * float64(i) * h)
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				fas.SetPolySrcAtPt(0, 2, i, j, k, -(s*s*s - 12*math.Pi*math.Pi*s))
			}
		}
	}
	fas.InitializeRhoHierarchy()

	r := rand.New(rand.NewSource(129))
	for idx := range u.Data {
		u.Data[idx] = 1.e6 * (r.Float64() - 0.5)
	}
	initial := fas.MaxResidual(fas.MaxDepth)
	if err = fas.VCycle(); err != nil {
		assert.True(t, errors.Is(err, ErrDampingFailed))
		return
	}
	assert.LessOrEqual(t, fas.MaxResidual(fas.MaxDepth), initial)
}

func TestPrintSolutionStrip(t *testing.T) {
	fas, u := newLaplaceSolver(t, 8, 1, 3, 5)
	u.Shift(1.5)
	fas.PrintSolutionStrip(3)
	fas.PrintSolutionStrip(1)
}
