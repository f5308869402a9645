package CoupledFields

import (
	"fmt"
	"math"

	"github.com/jbcm627/elliptic-solver/multigrid"
)

// CoupledFields solves two elliptic equations with cross terms on the
// periodic unit cube:
//
//	lap(u0) + c u1^3      = rho0
//	lap(u1) + c lap(u0)   = rho1
//
// with c = 0.1 and sinusoidal right-hand sides.
type CoupledFields struct {
	N                  int
	MinDepth, MaxDepth int
	U0, U1             *multigrid.Grid
	FAS                *multigrid.FASMultigrid
}

const crossCoef = 0.1

func NewCoupledFields(n, minDepth, maxDepth, order, maxRelaxIters int, tol float64) (c *CoupledFields) {
	var (
		err error
	)
	c = &CoupledFields{
		N:        n,
		MinDepth: minDepth,
		MaxDepth: maxDepth,
		U0:       multigrid.NewGrid(n, n, n),
		U1:       multigrid.NewGrid(n, n, n),
	}
	st, err := multigrid.NewStencil(order, 1.0)
	if err != nil {
		panic(err)
	}
	c.FAS, err = multigrid.NewFASMultigrid([]*multigrid.Grid{c.U0, c.U1}, []int{3, 3},
		minDepth, maxDepth, maxRelaxIters, tol, st)
	if err != nil {
		panic(err)
	}
	type atomSpec struct {
		a            multigrid.Atom
		molID, eqnID int
	}
	for _, s := range []atomSpec{
		{multigrid.Atom{Type: multigrid.AtomLaplacian, UID: 0}, 0, 0},
		{multigrid.Atom{Type: multigrid.AtomPoly, UID: 1, Value: 3}, 1, 0},
		{multigrid.Atom{Type: multigrid.AtomLaplacian, UID: 1}, 0, 1},
		{multigrid.Atom{Type: multigrid.AtomLaplacian, UID: 0}, 1, 1},
	} {
		if err = c.FAS.AddAtomToEqn(s.a, s.molID, s.eqnID); err != nil {
			panic(err)
		}
	}
	if err = c.FAS.SetMoleculeCoef(0, 1, crossCoef); err != nil {
		panic(err)
	}
	if err = c.FAS.SetMoleculeCoef(1, 1, crossCoef); err != nil {
		panic(err)
	}
	h := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				x := float64(i) * h
				y := float64(j) * h
				z := float64(k) * h
				rho0 := math.Sin(2*math.Pi*x) * math.Sin(2*math.Pi*y) * math.Sin(2*math.Pi*z)
				rho1 := math.Cos(2*math.Pi*x) * math.Cos(2*math.Pi*y) * math.Cos(2*math.Pi*z)
				c.FAS.SetPolySrcAtPt(0, 2, i, j, k, -rho0)
				c.FAS.SetPolySrcAtPt(1, 2, i, j, k, -rho1)
			}
		}
	}
	c.FAS.InitializeRhoHierarchy()
	return
}

// Run executes the V-cycles and returns the larger of the two final max
// residuals.
func (c *CoupledFields) Run(cycles int) (maxResidual float64, err error) {
	if err = c.FAS.VCycles(cycles); err != nil {
		return
	}
	maxResidual = c.FAS.MaxResidual(c.MaxDepth)
	fmt.Printf("Coupled fields problem done, max residual = %.6g\n", maxResidual)
	return
}
