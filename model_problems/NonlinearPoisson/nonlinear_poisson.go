package NonlinearPoisson

import (
	"fmt"
	"math"

	"github.com/jbcm627/elliptic-solver/multigrid"
)

// NonlinearPoisson solves lap(u) + u^3 = rho on the periodic unit cube
// with rho = sin^3(2 pi x) - 12 pi^2 sin(2 pi x), a cubic nonlinearity
// varying along x only.
type NonlinearPoisson struct {
	N                  int
	MinDepth, MaxDepth int
	U                  *multigrid.Grid
	FAS                *multigrid.FASMultigrid
}

func NewNonlinearPoisson(n, minDepth, maxDepth, order, maxRelaxIters int, tol float64) (c *NonlinearPoisson) {
	var (
		err error
	)
	c = &NonlinearPoisson{
		N:        n,
		MinDepth: minDepth,
		MaxDepth: maxDepth,
		U:        multigrid.NewGrid(n, n, n),
	}
	st, err := multigrid.NewStencil(order, 1.0)
	if err != nil {
		panic(err)
	}
	c.FAS, err = multigrid.NewFASMultigrid([]*multigrid.Grid{c.U}, []int{3},
		minDepth, maxDepth, maxRelaxIters, tol, st)
	if err != nil {
		panic(err)
	}
	if err = c.FAS.AddAtomToEqn(multigrid.Atom{Type: multigrid.AtomLaplacian, UID: 0}, 0, 0); err != nil {
		panic(err)
	}
	if err = c.FAS.AddAtomToEqn(multigrid.Atom{Type: multigrid.AtomPoly, UID: 0, Value: 3}, 1, 0); err != nil {
		panic(err)
	}
	h := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		s := math.Sin(2 * math.Pi * float64(i) * h)
		rho := s*s*s - 12*math.Pi*math.Pi*s
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				c.FAS.SetPolySrcAtPt(0, 2, i, j, k, -rho)
			}
		}
	}
	c.FAS.InitializeRhoHierarchy()
	return
}

// Run executes the V-cycles and returns the finest-grid max residual.
func (c *NonlinearPoisson) Run(cycles int) (maxResidual float64, err error) {
	if err = c.FAS.VCycles(cycles); err != nil {
		return
	}
	maxResidual = c.FAS.MaxResidual(c.MaxDepth)
	fmt.Printf("Nonlinear Poisson problem done, max residual = %.6g\n", maxResidual)
	return
}
