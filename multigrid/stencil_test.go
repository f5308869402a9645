package multigrid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fillSinProduct(g *Grid) {
	var (
		hx = 1.0 / float64(g.Nx)
		hy = 1.0 / float64(g.Ny)
		hz = 1.0 / float64(g.Nz)
	)
	for idx := range g.Data {
		i, j, k := g.IJK(idx)
		g.Data[idx] = math.Sin(2*math.Pi*float64(i)*hx) *
			math.Sin(2*math.Pi*float64(j)*hy) *
			math.Sin(2*math.Pi*float64(k)*hz)
	}
}

func TestStencilOrders(t *testing.T) {
	_, err := NewStencil(3, 1.0)
	assert.Error(t, err)
	_, err = NewStencil(4, 0)
	assert.Error(t, err)
	for _, order := range []int{2, 4, 6, 8} {
		_, err = NewStencil(order, 1.0)
		assert.NoError(t, err)
	}
}

func TestStencilTruncation(t *testing.T) {
	// u = sin(2 pi x) sin(2 pi y) sin(2 pi z) on the unit cube at N = 32,
	// order 4: laplacian recovered to relative error <= 1e-3
	var (
		n     = 32
		g     = NewGrid(n, n, n)
		st, _ = NewStencil(4, 1.0)
		h     = 1.0 / float64(n)
	)
	fillSinProduct(g)
	var maxRelErr float64
	for idx := range g.Data {
		i, j, k := g.IJK(idx)
		exact := -12 * math.Pi * math.Pi * g.Data[idx]
		if math.Abs(exact) < 1 {
			continue
		}
		relErr := math.Abs(st.Laplacian(g, i, j, k)-exact) / math.Abs(exact)
		if relErr > maxRelErr {
			maxRelErr = relErr
		}
	}
	assert.Less(t, maxRelErr, 1.e-3)

	// first derivative along x
	for _, pt := range [][3]int{{0, 8, 8}, {5, 3, 9}, {31, 8, 24}} {
		i, j, k := pt[0], pt[1], pt[2]
		exact := 2 * math.Pi * math.Cos(2*math.Pi*float64(i)*h) *
			math.Sin(2*math.Pi*float64(j)*h) * math.Sin(2*math.Pi*float64(k)*h)
		assert.InDelta(t, exact, st.Derivative(g, i, j, k, 1), 1.e-2)
	}

	// mixed second derivative
	for _, pt := range [][3]int{{3, 7, 8}, {12, 20, 8}} {
		i, j, k := pt[0], pt[1], pt[2]
		exact := 4 * math.Pi * math.Pi *
			math.Cos(2*math.Pi*float64(i)*h) * math.Cos(2*math.Pi*float64(j)*h) *
			math.Sin(2*math.Pi*float64(k)*h)
		assert.InDelta(t, exact, st.DoubleDerivative(g, i, j, k, 1, 2), 1.e-1)
	}
}

func TestStencilProperties(t *testing.T) {
	var (
		g     = NewGrid(16, 16, 16)
		st, _ = NewStencil(6, 1.0)
	)
	fillSinProduct(g)
	// periodic shift invariance
	for _, pt := range [][3]int{{0, 0, 0}, {3, 9, 14}} {
		i, j, k := pt[0], pt[1], pt[2]
		assert.Equal(t, st.Laplacian(g, i, j, k), st.Laplacian(g, i+16, j-16, k+32))
		assert.Equal(t, st.Derivative(g, i, j, k, 2), st.Derivative(g, i, j+16, k, 2))
	}
	// mixed derivatives commute
	for _, pt := range [][3]int{{1, 2, 3}, {10, 5, 0}} {
		i, j, k := pt[0], pt[1], pt[2]
		assert.InDelta(t, st.DoubleDerivative(g, i, j, k, 1, 3),
			st.DoubleDerivative(g, i, j, k, 3, 1), 1.e-12)
	}
	// laplacian is the sum of the three pure second derivatives
	for _, pt := range [][3]int{{4, 4, 4}, {15, 0, 7}} {
		i, j, k := pt[0], pt[1], pt[2]
		sum := st.DoubleDerivative(g, i, j, k, 1, 1) +
			st.DoubleDerivative(g, i, j, k, 2, 2) +
			st.DoubleDerivative(g, i, j, k, 3, 3)
		assert.Equal(t, sum, st.Laplacian(g, i, j, k))
	}
	// centre coefficient of the second derivative stencil matches the
	// tabulated diagonal constant
	for order, coef := range DoubleDerCoef {
		one := NewGrid(8, 8, 8)
		one.Shift(1)
		st2, _ := NewStencil(order, 1.0)
		// constant field: second derivative is zero, so the off-centre
		// weights must sum to the centre coefficient
		assert.InDelta(t, 0, st2.DoubleDerivative(one, 2, 3, 4, 1, 1), 1.e-12)
		var offSum float64
		for _, c := range der2Coefs[order] {
			offSum += 2 * c
		}
		assert.InDelta(t, coef, offSum, 1.e-12)
	}
}
