package multigrid

// restrictGrid averages each coarse point from the 27 enclosing fine
// points, weighting centre, faces, edges and corners by 1/8, 1/16, 1/32
// and 1/64. Fine indexing wraps periodically.
func (fas *FASMultigrid) restrictGrid(fine, coarse *Grid) {
	fas.parallelFor(coarse.Pts, func(lo, hi, _ int) {
		for idx := lo; idx < hi; idx++ {
			i, j, k := coarse.IJK(idx)
			fi, fj, fk := 2*i, 2*j, 2*k
			var sum float64
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					for dk := -1; dk <= 1; dk++ {
						w := 0.125
						switch di*di + dj*dj + dk*dk {
						case 1:
							w = 0.0625
						case 2:
							w = 0.03125
						case 3:
							w = 0.015625
						}
						sum += w * fine.Data[fine.Idx(fi+di, fj+dj, fk+dk)]
					}
				}
			}
			coarse.Data[idx] = sum
		}
	})
}

// axisSources lists the coarse coordinates along one axis whose nominal
// fine location 2c+d (d in {-1, 0, 1}, modulo 2n) lands on fine
// coordinate f, with the inverse-distance weight 2^-|d|. Even fine
// coordinates are co-located with one coarse point; odd ones sit between
// two.
func axisSources(f, n int, c *[2]int, w *[2]float64) int {
	if f%2 == 0 {
		c[0], w[0] = f/2, 1.0
		return 1
	}
	c[0], w[0] = (f-1)/2, 0.5
	c[1], w[1] = ((f+1)/2)%n, 0.5
	return 2
}

// prolongGrid interpolates the coarse grid onto the fine one. The scatter
// form distributes each coarse value into the 27 fine cells around its
// co-located point with weight 2^-(|di|+|dj|+|dk|), skipping nominal
// offsets that fall outside the fine extents; written here as the
// equivalent gather over fine points, which needs no write
// synchronization.
func (fas *FASMultigrid) prolongGrid(coarse, fine *Grid) {
	fas.parallelFor(fine.Pts, func(lo, hi, _ int) {
		var (
			ci, cj, ck [2]int
			wi, wj, wk [2]float64
		)
		for idx := lo; idx < hi; idx++ {
			i, j, k := fine.IJK(idx)
			ni := axisSources(i, coarse.Nx, &ci, &wi)
			nj := axisSources(j, coarse.Ny, &cj, &wj)
			nk := axisSources(k, coarse.Nz, &ck, &wk)
			var sum float64
			for a := 0; a < ni; a++ {
				for b := 0; b < nj; b++ {
					for c := 0; c < nk; c++ {
						sum += wi[a] * wj[b] * wk[c] *
							coarse.Data[(ci[a]*coarse.Ny+cj[b])*coarse.Nz+ck[c]]
					}
				}
			}
			fine.Data[idx] = sum
		}
	})
}

// restrict transfers one hierarchy level fine to coarse.
func (fas *FASMultigrid) restrict(h Hierarchy, fineDepth int) {
	fineIdx := fas.dIdx(fineDepth)
	fas.restrictGrid(h[fineIdx], h[fineIdx-1])
}

// prolong transfers one hierarchy level coarse to fine.
func (fas *FASMultigrid) prolong(h Hierarchy, coarseDepth int) {
	coarseIdx := fas.dIdx(coarseDepth)
	fas.prolongGrid(h[coarseIdx], h[coarseIdx+1])
}
