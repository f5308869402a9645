package multigrid

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/jbcm627/elliptic-solver/utils"
)

// ErrDampingFailed is returned when the Newton line search cannot find a
// damping factor in (0, 1] that reduces the residual norm. The solve
// cannot continue; the caller must restart from a different initial guess.
var ErrDampingFailed = errors.New("no damping factor reduces the residual norm")

// FASMultigrid solves a system of coupled nonlinear elliptic equations on
// a periodic Cartesian grid with full approximation storage multigrid.
// Relaxation is damped inexact Newton with an inner point-Jacobi solve of
// the linearized system.
//
// The finest-level solution grids are borrowed from the caller and
// mutated in place; everything else is owned by the solver and allocated
// once: solution and work hierarchies at construction, density grids on
// the first SetPolySrcAtPt write and in InitializeRhoHierarchy.
type FASMultigrid struct {
	UN            int   // number of unknown fields == number of equations
	MoleculeN     []int // molecules per equation, fixed at construction
	MinDepth      int
	MaxDepth      int
	MaxRelaxIters int
	Tol           float64
	St            Stencil
	NumWorkers    int

	totalDepths   int
	maxDepthIdx   int
	nxH, nyH, nzH []int

	uH         []Hierarchy
	coarseSrcH []Hierarchy
	dampingVH  []Hierarchy
	jacRHSH    []Hierarchy
	tmpH       []Hierarchy
	jacVNextH  []Hierarchy   // staging for the Jacobi sweep publish
	rhoH       [][]Hierarchy // [eqn][molecule]

	eqns [][]Molecule

	frozen     bool // schema locked by InitializeRhoHierarchy or the first V-cycle
	partitions map[int]*utils.PartitionMap
}

// NewFASMultigrid allocates the full grid hierarchy. u holds the
// caller-owned initial guess for each unknown at the finest level; all
// grids must share the same extents, which become the finest-level
// dimensions. Each coarser level halves every extent, rounding up.
func NewFASMultigrid(u []*Grid, moleculeN []int, minDepth, maxDepth,
	maxRelaxIters int, tol float64, st Stencil) (fas *FASMultigrid, err error) {
	if len(u) == 0 {
		return nil, fmt.Errorf("at least one unknown field is required")
	}
	if len(u) != len(moleculeN) {
		return nil, fmt.Errorf("got %d fields but %d molecule counts", len(u), len(moleculeN))
	}
	if minDepth < 1 || maxDepth <= minDepth {
		return nil, fmt.Errorf("invalid depth bounds [%d, %d]", minDepth, maxDepth)
	}
	if _, ok := DoubleDerCoef[st.Order]; !ok || st.HLen <= 0 {
		return nil, fmt.Errorf("invalid stencil: order %d, domain length %g", st.Order, st.HLen)
	}
	for eqnID, g := range u {
		if g == nil || !g.IsAllocated() {
			return nil, fmt.Errorf("unknown field %d is not allocated", eqnID)
		}
		if g.Nx != u[0].Nx || g.Ny != u[0].Ny || g.Nz != u[0].Nz {
			return nil, fmt.Errorf("unknown field %d extents differ from field 0", eqnID)
		}
	}
	for eqnID, mn := range moleculeN {
		if mn < 1 {
			return nil, fmt.Errorf("equation %d needs at least one molecule", eqnID)
		}
	}

	fas = &FASMultigrid{
		UN:            len(u),
		MoleculeN:     moleculeN,
		MinDepth:      minDepth,
		MaxDepth:      maxDepth,
		MaxRelaxIters: maxRelaxIters,
		Tol:           tol,
		St:            st,
		NumWorkers:    runtime.NumCPU(),
		totalDepths:   maxDepth - minDepth + 1,
		maxDepthIdx:   maxDepth - minDepth,
		partitions:    make(map[int]*utils.PartitionMap),
	}

	fas.nxH = make([]int, fas.totalDepths)
	fas.nyH = make([]int, fas.totalDepths)
	fas.nzH = make([]int, fas.totalDepths)
	fas.nxH[fas.maxDepthIdx] = u[0].Nx
	fas.nyH[fas.maxDepthIdx] = u[0].Ny
	fas.nzH[fas.maxDepthIdx] = u[0].Nz
	for d := fas.maxDepthIdx - 1; d >= 0; d-- {
		fas.nxH[d] = fas.nxH[d+1]/2 + fas.nxH[d+1]%2
		fas.nyH[d] = fas.nyH[d+1]/2 + fas.nyH[d+1]%2
		fas.nzH[d] = fas.nzH[d+1]/2 + fas.nzH[d+1]%2
	}

	fas.uH = make([]Hierarchy, fas.UN)
	fas.coarseSrcH = make([]Hierarchy, fas.UN)
	fas.dampingVH = make([]Hierarchy, fas.UN)
	fas.jacRHSH = make([]Hierarchy, fas.UN)
	fas.tmpH = make([]Hierarchy, fas.UN)
	fas.jacVNextH = make([]Hierarchy, fas.UN)
	fas.rhoH = make([][]Hierarchy, fas.UN)
	fas.eqns = make([][]Molecule, fas.UN)
	for eqnID := 0; eqnID < fas.UN; eqnID++ {
		fas.uH[eqnID] = NewHierarchy(fas.nxH, fas.nyH, fas.nzH, u[eqnID])
		fas.coarseSrcH[eqnID] = NewHierarchy(fas.nxH, fas.nyH, fas.nzH, nil)
		fas.dampingVH[eqnID] = NewHierarchy(fas.nxH, fas.nyH, fas.nzH, nil)
		fas.jacRHSH[eqnID] = NewHierarchy(fas.nxH, fas.nyH, fas.nzH, nil)
		fas.tmpH[eqnID] = NewHierarchy(fas.nxH, fas.nyH, fas.nzH, nil)
		fas.jacVNextH[eqnID] = NewHierarchy(fas.nxH, fas.nyH, fas.nzH, nil)
		fas.rhoH[eqnID] = make([]Hierarchy, moleculeN[eqnID])
		for molID := range fas.rhoH[eqnID] {
			fas.rhoH[eqnID][molID] = make(Hierarchy, fas.totalDepths)
			for d := range fas.rhoH[eqnID][molID] {
				fas.rhoH[eqnID][molID][d] = &Grid{} // absent until written
			}
		}
		fas.eqns[eqnID] = make([]Molecule, moleculeN[eqnID])
		for molID := range fas.eqns[eqnID] {
			fas.eqns[eqnID][molID].ConstCoef = 1
		}
	}
	return fas, nil
}

func (fas *FASMultigrid) dIdx(depth int) int {
	return depth - fas.MinDepth
}

// AddAtomToEqn appends one atom to the given molecule. Permitted only
// before InitializeRhoHierarchy or the first V-cycle.
func (fas *FASMultigrid) AddAtomToEqn(a Atom, molID, eqnID int) error {
	if fas.frozen {
		return fmt.Errorf("equation schema is frozen once density initialisation or solving has started")
	}
	if eqnID < 0 || eqnID >= fas.UN {
		return fmt.Errorf("equation id %d out of range [0, %d)", eqnID, fas.UN)
	}
	if molID < 0 || molID >= fas.MoleculeN[eqnID] {
		return fmt.Errorf("molecule id %d out of range [0, %d)", molID, fas.MoleculeN[eqnID])
	}
	if err := validateAtom(a, fas.UN); err != nil {
		return err
	}
	fas.eqns[eqnID][molID].AddAtom(a)
	return nil
}

// SetMoleculeCoef sets the constant coefficient of a molecule (1 by
// default). Permitted only before InitializeRhoHierarchy or the first
// V-cycle.
func (fas *FASMultigrid) SetMoleculeCoef(eqnID, molID int, c float64) error {
	if fas.frozen {
		return fmt.Errorf("equation schema is frozen once density initialisation or solving has started")
	}
	if eqnID < 0 || eqnID >= fas.UN {
		return fmt.Errorf("equation id %d out of range [0, %d)", eqnID, fas.UN)
	}
	if molID < 0 || molID >= fas.MoleculeN[eqnID] {
		return fmt.Errorf("molecule id %d out of range [0, %d)", molID, fas.MoleculeN[eqnID])
	}
	fas.eqns[eqnID][molID].ConstCoef = c
	return nil
}

// SetPolySrcAtPt writes one cell of the finest-level density grid of a
// molecule, allocating the grid on first write.
func (fas *FASMultigrid) SetPolySrcAtPt(eqnID, molID, i, j, k int, value float64) {
	rho := fas.rhoH[eqnID][molID][fas.maxDepthIdx]
	if !rho.IsAllocated() {
		rho.Init(fas.nxH[fas.maxDepthIdx], fas.nyH[fas.maxDepthIdx], fas.nzH[fas.maxDepthIdx])
	}
	rho.Data[rho.Idx(i, j, k)] = value
}

// InitializeRhoHierarchy restricts every present finest-level density to
// all coarser depths. Molecules whose finest density is absent stay
// absent at every depth. Call once, after all SetPolySrcAtPt writes; it
// also locks the equation schema.
func (fas *FASMultigrid) InitializeRhoHierarchy() {
	fas.frozen = true
	for eqnID := 0; eqnID < fas.UN; eqnID++ {
		for molID := 0; molID < fas.MoleculeN[eqnID]; molID++ {
			h := fas.rhoH[eqnID][molID]
			if !h[fas.maxDepthIdx].IsAllocated() {
				continue
			}
			for d := fas.maxDepthIdx - 1; d >= 0; d-- {
				h[d].Init(fas.nxH[d], fas.nyH[d], fas.nzH[d])
			}
			for depth := fas.MaxDepth; depth > fas.MinDepth; depth-- {
				fas.restrict(h, depth)
			}
		}
	}
}

// evaluateEq fills result at the given depth with F_e(u).
func (fas *FASMultigrid) evaluateEq(resultH Hierarchy, eqnID, depth int) {
	var (
		depthIdx = fas.dIdx(depth)
		result   = resultH[depthIdx]
	)
	fas.parallelFor(result.Pts, func(lo, hi, _ int) {
		for idx := lo; idx < hi; idx++ {
			i, j, k := result.IJK(idx)
			result.Data[idx] = fas.evaluatePt(eqnID, depthIdx, i, j, k)
		}
	})
}

// computeResidual fills the residual coarse_src - F(u) at the given depth.
func (fas *FASMultigrid) computeResidual(residualH Hierarchy, eqnID, depth int) {
	var (
		depthIdx  = fas.dIdx(depth)
		coarseSrc = fas.coarseSrcH[eqnID][depthIdx]
		residual  = residualH[depthIdx]
	)
	fas.evaluateEq(residualH, eqnID, depth)
	fas.parallelFor(residual.Pts, func(lo, hi, _ int) {
		for idx := lo; idx < hi; idx++ {
			residual.Data[idx] = coarseSrc.Data[idx] - residual.Data[idx]
		}
	})
}

func (fas *FASMultigrid) maxResidualEqn(eqnID, depth int) float64 {
	var (
		depthIdx  = fas.dIdx(depth)
		coarseSrc = fas.coarseSrcH[eqnID][depthIdx]
	)
	return fas.parallelMax(coarseSrc.Pts, func(idx int) float64 {
		i, j, k := coarseSrc.IJK(idx)
		r := coarseSrc.Data[idx] - fas.evaluatePt(eqnID, depthIdx, i, j, k)
		if r < 0 {
			r = -r
		}
		return r
	})
}

// MaxResidual returns the largest pointwise |coarse_src - F(u)| over all
// equations at the given depth.
func (fas *FASMultigrid) MaxResidual(depth int) (max float64) {
	for eqnID := 0; eqnID < fas.UN; eqnID++ {
		if r := fas.maxResidualEqn(eqnID, depth); r > max {
			max = r
		}
	}
	return
}

// computeCoarseRestrictions restricts the solution and residual of one
// equation to the next coarser depth and rebuilds the FAS source there:
// coarse_src = F(restricted u) + restricted residual.
func (fas *FASMultigrid) computeCoarseRestrictions(eqnID, fineDepth int) {
	fas.restrict(fas.uH[eqnID], fineDepth)
	fas.computeResidual(fas.tmpH[eqnID], eqnID, fineDepth)
	fas.restrict(fas.tmpH[eqnID], fineDepth)
	fas.evaluateEq(fas.coarseSrcH[eqnID], eqnID, fineDepth-1)
	var (
		coarseIdx = fas.dIdx(fineDepth - 1)
		coarseSrc = fas.coarseSrcH[eqnID][coarseIdx]
		tmp       = fas.tmpH[eqnID][coarseIdx]
	)
	fas.parallelFor(coarseSrc.Pts, func(lo, hi, _ int) {
		for idx := lo; idx < hi; idx++ {
			coarseSrc.Data[idx] += tmp.Data[idx]
		}
	})
}

// changeApproximateSolutionToError converts a saved approximation into the
// correction err = exact - appx, in place.
func (fas *FASMultigrid) changeApproximateSolutionToError(appxToErrH, exactSolnH Hierarchy, depth int) {
	var (
		depthIdx  = fas.dIdx(depth)
		appxToErr = appxToErrH[depthIdx]
		exactSoln = exactSolnH[depthIdx]
	)
	fas.parallelFor(appxToErr.Pts, func(lo, hi, _ int) {
		for idx := lo; idx < hi; idx++ {
			appxToErr.Data[idx] = exactSoln.Data[idx] - appxToErr.Data[idx]
		}
	})
}

// correctFineFromCoarseErr prolongs the coarse correction onto the next
// finer solution and leaves the pre-correction solution in err2appx so the
// next ascent step can repeat the snapshot.
func (fas *FASMultigrid) correctFineFromCoarseErr(err2appxH, appxSolnH Hierarchy, fineDepth int) {
	fas.prolong(err2appxH, fineDepth-1)
	var (
		fineIdx  = fas.dIdx(fineDepth)
		err2appx = err2appxH[fineIdx]
		appxSoln = appxSolnH[fineIdx]
	)
	fas.parallelFor(appxSoln.Pts, func(lo, hi, _ int) {
		for idx := lo; idx < hi; idx++ {
			appxVal := appxSoln.Data[idx]
			appxSoln.Data[idx] += err2appx.Data[idx]
			err2appx.Data[idx] = appxVal
		}
	})
}

func (fas *FASMultigrid) copyGrid(fromH, toH []Hierarchy, eqnID, depth int) {
	depthIdx := fas.dIdx(depth)
	toH[eqnID][depthIdx].CopyFrom(fromH[eqnID][depthIdx])
}

// VCycle performs one full approximation storage V-cycle: relax at the
// finest depth, restrict down to the coarsest, then relax and prolong
// corrections back up.
func (fas *FASMultigrid) VCycle() (err error) {
	fas.frozen = true

	if err = fas.relax(fas.MaxDepth, fas.MaxRelaxIters); err != nil {
		return
	}
	fmt.Printf("  Initial max. residual on fine grid is: %.6g.\n", fas.MaxResidual(fas.MaxDepth))

	for eqnID := 0; eqnID < fas.UN; eqnID++ {
		for depth := fas.MaxDepth; depth > fas.MinDepth; depth-- {
			fas.computeCoarseRestrictions(eqnID, depth)
		}
		fas.copyGrid(fas.uH, fas.tmpH, eqnID, fas.MinDepth)
	}

	for coarseDepth := fas.MinDepth; coarseDepth < fas.MaxDepth; coarseDepth++ {
		if err = fas.relax(coarseDepth, fas.MaxRelaxIters); err != nil {
			return
		}
		fmt.Printf("    Working on upward stroke at depth %d; residual after solving is: %.6g.\n",
			coarseDepth, fas.MaxResidual(coarseDepth))

		// tmp holds the pre-smoothing solution; convert to the correction
		for eqnID := 0; eqnID < fas.UN; eqnID++ {
			fas.changeApproximateSolutionToError(fas.tmpH[eqnID], fas.uH[eqnID], coarseDepth)
		}
		for eqnID := 0; eqnID < fas.UN; eqnID++ {
			fas.correctFineFromCoarseErr(fas.tmpH[eqnID], fas.uH[eqnID], coarseDepth+1)
		}
	}

	if err = fas.relax(fas.MaxDepth, fas.MaxRelaxIters); err != nil {
		return
	}
	fmt.Printf("  Final max. residual on fine grid is: %.6g.\n", fas.MaxResidual(fas.MaxDepth))
	return
}

// VCycles runs numCycles V-cycles followed by a final smoothing sweep at
// the finest depth, then prints per-field summary statistics.
func (fas *FASMultigrid) VCycles(numCycles int) (err error) {
	for cycle := 0; cycle < numCycles; cycle++ {
		if err = fas.VCycle(); err != nil {
			return
		}
	}
	if err = fas.relax(fas.MaxDepth, 10); err != nil {
		return
	}
	fmt.Printf("  Final solution residual is: %.6g\n", fas.MaxResidual(fas.MaxDepth))
	for eqnID := 0; eqnID < fas.UN; eqnID++ {
		avg, min, max := fas.SolutionStats(eqnID)
		fmt.Printf(" Solution for variable %d has average / min / max value: %.6g / %.6g / %.6g.\n",
			eqnID, avg, min, max)
	}
	return
}

// SolutionStats reports average, minimum and maximum of one solution
// field at the finest depth.
func (fas *FASMultigrid) SolutionStats(eqnID int) (avg, min, max float64) {
	u := fas.uH[eqnID][fas.maxDepthIdx]
	return u.Avg(), u.Min(), u.Max()
}

// PrintSolutionStrip prints one x-strip of the first solution field at
// the given depth, at (j, k) = (ny/4, nz/4).
func (fas *FASMultigrid) PrintSolutionStrip(depth int) {
	fas.printStrip(fas.uH[0][fas.dIdx(depth)])
}

func (fas *FASMultigrid) printStrip(out *Grid) {
	fmt.Printf("Values: { ")
	for i := 0; i < out.Nx; i++ {
		fmt.Printf("%.15f, ", out.Data[out.Idx(i, out.Ny/4, out.Nz/4)])
	}
	fmt.Printf("}\n")
}
