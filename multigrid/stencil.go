package multigrid

import "fmt"

// DoubleDerCoef is the magnitude of the centre coefficient of the pure
// second-derivative stencil, by order. The Jacobian relaxer needs this
// constant separately from the stencil itself to split off the diagonal.
var DoubleDerCoef = map[int]float64{
	2: 2.0,
	4: 2.5,
	6: 49.0 / 18.0,
	8: 205.0 / 72.0,
}

// Off-centre weights of the central-difference stencils, index m holding
// the weight of the points at offset ±(m+1).
var (
	der1Coefs = map[int][]float64{
		2: {1.0 / 2.0},
		4: {2.0 / 3.0, -1.0 / 12.0},
		6: {3.0 / 4.0, -3.0 / 20.0, 1.0 / 60.0},
		8: {4.0 / 5.0, -1.0 / 5.0, 4.0 / 105.0, -1.0 / 280.0},
	}
	der2Coefs = map[int][]float64{
		2: {1.0},
		4: {4.0 / 3.0, -1.0 / 12.0},
		6: {3.0 / 2.0, -3.0 / 20.0, 1.0 / 90.0},
		8: {8.0 / 5.0, -1.0 / 5.0, 8.0 / 315.0, -1.0 / 560.0},
	}
)

// Stencil evaluates periodic central finite differences of a configured
// order. Spacing is equal in all three axes: h = HLen / nx of the grid
// being read.
type Stencil struct {
	Order int
	HLen  float64
}

func NewStencil(order int, hLen float64) (st Stencil, err error) {
	if _, ok := DoubleDerCoef[order]; !ok {
		err = fmt.Errorf("unsupported stencil order %d, must be one of 2, 4, 6, 8", order)
		return
	}
	if hLen <= 0 {
		err = fmt.Errorf("domain length must be positive, got %g", hLen)
		return
	}
	st = Stencil{Order: order, HLen: hLen}
	return
}

func (st Stencil) h(g *Grid) float64 {
	return st.HLen / float64(g.Nx)
}

func axisOffset(axis, m int) (di, dj, dk int) {
	switch axis {
	case 1:
		di = m
	case 2:
		dj = m
	case 3:
		dk = m
	default:
		panic(fmt.Sprintf("axis %d out of range", axis))
	}
	return
}

// Derivative computes du/dx_axis at (i, j, k), axis in {1, 2, 3}.
func (st Stencil) Derivative(g *Grid, i, j, k, axis int) (d float64) {
	for m, c := range der1Coefs[st.Order] {
		di, dj, dk := axisOffset(axis, m+1)
		d += c * (g.Data[g.Idx(i+di, j+dj, k+dk)] - g.Data[g.Idx(i-di, j-dj, k-dk)])
	}
	return d / st.h(g)
}

// DoubleDerivative computes d2u/dx_a dx_b at (i, j, k). The mixed case is
// the tensor product of two first-derivative stencils.
func (st Stencil) DoubleDerivative(g *Grid, i, j, k, a, b int) (d float64) {
	var (
		h = st.h(g)
	)
	if a == b {
		d = -DoubleDerCoef[st.Order] * g.Data[g.Idx(i, j, k)]
		for m, c := range der2Coefs[st.Order] {
			di, dj, dk := axisOffset(a, m+1)
			d += c * (g.Data[g.Idx(i+di, j+dj, k+dk)] + g.Data[g.Idx(i-di, j-dj, k-dk)])
		}
		return d / (h * h)
	}
	for m, cm := range der1Coefs[st.Order] {
		ai, aj, ak := axisOffset(a, m+1)
		for n, cn := range der1Coefs[st.Order] {
			bi, bj, bk := axisOffset(b, n+1)
			d += cm * cn * (g.Data[g.Idx(i+ai+bi, j+aj+bj, k+ak+bk)] -
				g.Data[g.Idx(i+ai-bi, j+aj-bj, k+ak-bk)] -
				g.Data[g.Idx(i-ai+bi, j-aj+bj, k-ak+bk)] +
				g.Data[g.Idx(i-ai-bi, j-aj-bj, k-ak-bk)])
		}
	}
	return d / (h * h)
}

// Laplacian is the sum of the three pure second derivatives.
func (st Stencil) Laplacian(g *Grid, i, j, k int) float64 {
	return st.DoubleDerivative(g, i, j, k, 1, 1) +
		st.DoubleDerivative(g, i, j, k, 2, 2) +
		st.DoubleDerivative(g, i, j, k, 3, 3)
}
