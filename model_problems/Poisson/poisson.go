package Poisson

import (
	"fmt"
	"math"

	"github.com/jbcm627/elliptic-solver/multigrid"
)

// Poisson solves the periodic Poisson equation lap(u) = rho on the unit
// cube with rho = sin(2 pi x) sin(2 pi y) sin(2 pi z), starting from a
// zero initial guess.
type Poisson struct {
	N                  int
	MinDepth, MaxDepth int
	U                  *multigrid.Grid
	FAS                *multigrid.FASMultigrid
}

func NewPoisson(n, minDepth, maxDepth, order, maxRelaxIters int, tol float64) (c *Poisson) {
	var (
		err error
	)
	c = &Poisson{
		N:        n,
		MinDepth: minDepth,
		MaxDepth: maxDepth,
		U:        multigrid.NewGrid(n, n, n),
	}
	st, err := multigrid.NewStencil(order, 1.0)
	if err != nil {
		panic(err)
	}
	c.FAS, err = multigrid.NewFASMultigrid([]*multigrid.Grid{c.U}, []int{2},
		minDepth, maxDepth, maxRelaxIters, tol, st)
	if err != nil {
		panic(err)
	}
	if err = c.FAS.AddAtomToEqn(multigrid.Atom{Type: multigrid.AtomLaplacian, UID: 0}, 0, 0); err != nil {
		panic(err)
	}
	h := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				rho := math.Sin(2*math.Pi*float64(i)*h) *
					math.Sin(2*math.Pi*float64(j)*h) *
					math.Sin(2*math.Pi*float64(k)*h)
				c.FAS.SetPolySrcAtPt(0, 0, i, j, k, 1) // unit coefficient on lap(u)
				c.FAS.SetPolySrcAtPt(0, 1, i, j, k, -rho)
			}
		}
	}
	c.FAS.InitializeRhoHierarchy()
	return
}

// Run executes the V-cycles and returns the finest-grid max residual.
func (c *Poisson) Run(cycles int) (maxResidual float64, err error) {
	if err = c.FAS.VCycles(cycles); err != nil {
		return
	}
	maxResidual = c.FAS.MaxResidual(c.MaxDepth)
	fmt.Printf("Poisson problem done, max residual = %.6g\n", maxResidual)
	return
}
