package multigrid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Grid is a dense 3-D scalar field with flat row-major storage. Index
// arithmetic is periodic in all three axes. A Grid with Pts == 0 is an
// unallocated placeholder, used to mark an absent density field.
type Grid struct {
	Nx, Ny, Nz int
	Pts        int
	Data       []float64
}

func NewGrid(nx, ny, nz int) (g *Grid) {
	g = &Grid{}
	g.Init(nx, ny, nz)
	return
}

func (g *Grid) Init(nx, ny, nz int) {
	g.Nx, g.Ny, g.Nz = nx, ny, nz
	g.Pts = nx * ny * nz
	g.Data = make([]float64, g.Pts)
}

func (g *Grid) IsAllocated() bool {
	return g.Pts > 0
}

// Idx maps (i, j, k) to the flat storage index, wrapping each coordinate
// periodically. Negative and out-of-range coordinates are valid.
func (g *Grid) Idx(i, j, k int) int {
	i = ((i % g.Nx) + g.Nx) % g.Nx
	j = ((j % g.Ny) + g.Ny) % g.Ny
	k = ((k % g.Nz) + g.Nz) % g.Nz
	return (i*g.Ny+j)*g.Nz + k
}

// IJK inverts Idx for in-range flat indices.
func (g *Grid) IJK(idx int) (i, j, k int) {
	i = idx / (g.Ny * g.Nz)
	j = (idx / g.Nz) % g.Ny
	k = idx % g.Nz
	return
}

func (g *Grid) Zero() {
	for i := range g.Data {
		g.Data[i] = 0
	}
}

// Add accumulates another grid of the same extents, in place.
func (g *Grid) Add(o *Grid) {
	if g.Pts != o.Pts {
		panic(fmt.Sprintf("grid add dimension mismatch: %d != %d", g.Pts, o.Pts))
	}
	for i := range g.Data {
		g.Data[i] += o.Data[i]
	}
}

// Shift adds a constant to every point.
func (g *Grid) Shift(s float64) {
	for i := range g.Data {
		g.Data[i] += s
	}
}

func (g *Grid) CopyFrom(src *Grid) {
	if g.Pts != src.Pts {
		panic(fmt.Sprintf("grid copy dimension mismatch: %d != %d", g.Pts, src.Pts))
	}
	copy(g.Data, src.Data)
}

func (g *Grid) Min() float64 {
	return floats.Min(g.Data)
}

func (g *Grid) Max() float64 {
	return floats.Max(g.Data)
}

func (g *Grid) Avg() float64 {
	return floats.Sum(g.Data) / float64(g.Pts)
}

// Hierarchy is one logical field stored at every depth, coarsest first.
type Hierarchy []*Grid

// NewHierarchy allocates grids at every depth index for the given extents;
// when borrow is non-nil it fills the last (finest) slot instead.
func NewHierarchy(nxH, nyH, nzH []int, borrow *Grid) (h Hierarchy) {
	h = make(Hierarchy, len(nxH))
	for d := range h {
		if borrow != nil && d == len(h)-1 {
			h[d] = borrow
			continue
		}
		h[d] = NewGrid(nxH[d], nyH[d], nzH[d])
	}
	return
}
