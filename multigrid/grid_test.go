package multigrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrid(t *testing.T) {
	// Periodic indexing
	{
		g := NewGrid(4, 5, 6)
		assert.Equal(t, g.Idx(1, 2, 3), g.Idx(1+4, 2+5, 3+6))
		assert.Equal(t, g.Idx(0, 0, 0), g.Idx(-4, -5, -6))
		assert.Equal(t, g.Idx(3, 4, 5), g.Idx(-1, -1, -1))
		// offsets wider than one period, as used by high order stencils
		// on small coarse grids
		assert.Equal(t, g.Idx(1, 1, 1), g.Idx(1+8, 1-10, 1+12))
	}
	// IJK inverts Idx
	{
		g := NewGrid(3, 4, 5)
		for idx := 0; idx < g.Pts; idx++ {
			i, j, k := g.IJK(idx)
			assert.Equal(t, idx, g.Idx(i, j, k))
		}
	}
	// Statistics and in-place ops
	{
		g := NewGrid(2, 2, 2)
		for i := range g.Data {
			g.Data[i] = float64(i)
		}
		assert.Equal(t, 0., g.Min())
		assert.Equal(t, 7., g.Max())
		assert.Equal(t, 3.5, g.Avg())
		g.Shift(2)
		assert.Equal(t, 2., g.Min())
		assert.Equal(t, 9., g.Max())
		o := NewGrid(2, 2, 2)
		o.Shift(-2)
		g.Add(o)
		assert.Equal(t, 0., g.Min())
		assert.Equal(t, 7., g.Max())
		g.Zero()
		assert.Equal(t, 0., g.Max())
	}
	// Placeholder grids report unallocated
	{
		g := &Grid{}
		assert.False(t, g.IsAllocated())
		assert.True(t, NewGrid(1, 1, 1).IsAllocated())
	}
}

func TestHierarchyDims(t *testing.T) {
	// Each coarser level halves every extent, rounding up
	u := NewGrid(20, 20, 20)
	st, err := NewStencil(4, 1.0)
	assert.NoError(t, err)
	fas, err := NewFASMultigrid([]*Grid{u}, []int{1}, 1, 4, 10, 1.e-8, st)
	assert.NoError(t, err)
	assert.Equal(t, []int{3, 5, 10, 20}, fas.nxH)
	for d := 0; d < fas.totalDepths-1; d++ {
		n := fas.nxH[d+1]
		assert.Equal(t, n/2+n%2, fas.nxH[d])
	}
	// finest level borrows the caller's grid
	assert.Same(t, u, fas.uH[0][fas.maxDepthIdx])
}

func TestConstructorValidation(t *testing.T) {
	st, _ := NewStencil(4, 1.0)
	u := NewGrid(8, 8, 8)
	{
		_, err := NewFASMultigrid([]*Grid{}, []int{}, 1, 3, 10, 1.e-8, st)
		assert.Error(t, err)
	}
	{
		_, err := NewFASMultigrid([]*Grid{u}, []int{1, 1}, 1, 3, 10, 1.e-8, st)
		assert.Error(t, err)
	}
	{
		_, err := NewFASMultigrid([]*Grid{u}, []int{1}, 3, 3, 10, 1.e-8, st)
		assert.Error(t, err)
	}
	{
		_, err := NewFASMultigrid([]*Grid{u}, []int{1}, 1, 3, 10, 1.e-8, Stencil{Order: 3, HLen: 1})
		assert.Error(t, err)
	}
	{
		_, err := NewFASMultigrid([]*Grid{u, NewGrid(4, 4, 4)}, []int{1, 1}, 1, 3, 10, 1.e-8, st)
		assert.Error(t, err)
	}
	{
		fas, err := NewFASMultigrid([]*Grid{u}, []int{1}, 1, 3, 10, 1.e-8, st)
		assert.NoError(t, err)
		assert.Error(t, fas.AddAtomToEqn(Atom{Type: 12, UID: 0}, 0, 0))
		assert.Error(t, fas.AddAtomToEqn(Atom{Type: AtomPoly, UID: 1}, 0, 0))
		assert.Error(t, fas.AddAtomToEqn(Atom{Type: AtomPoly, UID: 0}, 1, 0))
		assert.Error(t, fas.AddAtomToEqn(Atom{Type: AtomPoly, UID: 0}, 0, 1))
		assert.NoError(t, fas.AddAtomToEqn(Atom{Type: AtomLaplacian, UID: 0}, 0, 0))
		fas.InitializeRhoHierarchy()
		assert.Error(t, fas.AddAtomToEqn(Atom{Type: AtomPoly, UID: 0}, 0, 0))
		assert.Error(t, fas.SetMoleculeCoef(0, 0, 2))
	}
}
