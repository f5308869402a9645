package multigrid

import "math"

// evaluatePt computes F_e(u) at one point: the sum over molecules of
// const_coef * rho * product of atom values.
func (fas *FASMultigrid) evaluatePt(eqnID, depthIdx, i, j, k int) (res float64) {
	var (
		idx = fas.uH[eqnID][depthIdx].Idx(i, j, k)
		st  = fas.St
	)
	for molID := range fas.eqns[eqnID] {
		mol := &fas.eqns[eqnID][molID]
		val := mol.ConstCoef
		if rho := fas.rhoH[eqnID][molID][depthIdx]; rho.IsAllocated() {
			val *= rho.Data[idx]
		}
		for _, ad := range mol.Atoms {
			vd := fas.uH[ad.UID][depthIdx]
			switch {
			case ad.Type == AtomPoly:
				val *= math.Pow(vd.Data[idx], ad.Value)
			case ad.Type.isFirstDer():
				val *= st.Derivative(vd, i, j, k, derAxes[ad.Type][0])
			case ad.Type.isSecondDer():
				ax := derAxes[ad.Type]
				val *= st.DoubleDerivative(vd, i, j, k, ax[0], ax[1])
			default:
				val *= st.Laplacian(vd, i, j, k)
			}
		}
		res += val
	}
	return
}

// directionalDerPt computes the directional derivative of F_e along the
// field uID, applied to the current damping direction v: the product rule
// differentiates exactly one atom at a time, atoms on other fields
// contribute only their value.
func (fas *FASMultigrid) directionalDerPt(eqnID, depthIdx, i, j, k, uID int) (res float64) {
	var (
		idx   = fas.uH[eqnID][depthIdx].Idx(i, j, k)
		st    = fas.St
		jacVd = fas.dampingVH[uID][depthIdx]
	)
	for molID := range fas.eqns[eqnID] {
		mol := &fas.eqns[eqnID][molID]
		nonDerVal := mol.ConstCoef
		derVal := 0.0
		if rho := fas.rhoH[eqnID][molID][depthIdx]; rho.IsAllocated() {
			nonDerVal *= rho.Data[idx]
		}
		for _, ad := range mol.Atoms {
			vd := fas.uH[ad.UID][depthIdx]
			switch {
			case ad.Type == AtomPoly:
				pv := math.Pow(vd.Data[idx], ad.Value)
				if uID == ad.UID {
					derVal = nonDerVal*ad.Value*math.Pow(vd.Data[idx], ad.Value-1)*jacVd.Data[idx] +
						derVal*pv
					nonDerVal *= pv
				} else {
					nonDerVal *= pv
					derVal *= pv
				}
			case ad.Type.isFirstDer():
				axis := derAxes[ad.Type][0]
				dv := st.Derivative(vd, i, j, k, axis)
				if uID == ad.UID {
					derVal = nonDerVal*st.Derivative(jacVd, i, j, k, axis) + derVal*dv
					nonDerVal *= dv
				} else {
					nonDerVal *= dv
					derVal *= dv
				}
			case ad.Type.isSecondDer():
				ax := derAxes[ad.Type]
				dv := st.DoubleDerivative(vd, i, j, k, ax[0], ax[1])
				if uID == ad.UID {
					derVal = nonDerVal*st.DoubleDerivative(jacVd, i, j, k, ax[0], ax[1]) + derVal*dv
					nonDerVal *= dv
				} else {
					nonDerVal *= dv
					derVal *= dv
				}
			default:
				dv := st.Laplacian(vd, i, j, k)
				if uID == ad.UID {
					derVal = nonDerVal*st.Laplacian(jacVd, i, j, k) + derVal*dv
					nonDerVal *= dv
				} else {
					nonDerVal *= dv
					derVal *= dv
				}
			}
		}
		res += derVal
	}
	return
}

// jacobianCoefsPt computes, for equation eqnID with respect to its own
// field uID, the two accumulators of the point-Jacobi update: coefA is
// the off-diagonal part of the linearization applied to the current v,
// coefB the coefficient of v(x) itself. The diagonal of the second
// derivative and Laplacian stencils is split off: it accrues to coefA
// with sign + (restoring the full directional derivative together with
// coefB*v) and to coefB with sign -.
func (fas *FASMultigrid) jacobianCoefsPt(eqnID, depthIdx, i, j, k, uID int) (coefA, coefB float64) {
	var (
		idx   = fas.uH[eqnID][depthIdx].Idx(i, j, k)
		st    = fas.St
		jacVd = fas.dampingVH[uID][depthIdx]
		dx    = st.HLen / float64(fas.nxH[depthIdx])
		diag  = DoubleDerCoef[st.Order] / (dx * dx)
	)
	for molID := range fas.eqns[eqnID] {
		mol := &fas.eqns[eqnID][molID]
		var molToA, molToB float64
		nonDerVal := mol.ConstCoef
		if rho := fas.rhoH[eqnID][molID][depthIdx]; rho.IsAllocated() {
			nonDerVal *= rho.Data[idx]
		}
		for _, ad := range mol.Atoms {
			vd := fas.uH[ad.UID][depthIdx]
			switch {
			case ad.Type == AtomPoly:
				pv := math.Pow(vd.Data[idx], ad.Value)
				if uID == ad.UID {
					molToB = molToB*pv + nonDerVal*ad.Value*math.Pow(vd.Data[idx], ad.Value-1)
					nonDerVal *= pv
					molToA *= pv
				} else {
					molToB *= pv
					molToA *= pv
					nonDerVal *= pv
				}
			case ad.Type.isFirstDer():
				axis := derAxes[ad.Type][0]
				dv := st.Derivative(vd, i, j, k, axis)
				if uID == ad.UID {
					molToA = molToA*dv + nonDerVal*st.Derivative(jacVd, i, j, k, axis)
					molToB *= dv
					nonDerVal *= dv
				} else {
					nonDerVal *= dv
					molToB *= dv
					molToA *= dv
				}
			case ad.Type.isSecondDer():
				ax := derAxes[ad.Type]
				dv := st.DoubleDerivative(vd, i, j, k, ax[0], ax[1])
				if uID == ad.UID {
					dvj := st.DoubleDerivative(jacVd, i, j, k, ax[0], ax[1])
					if ad.Type.isPureSecondDer() {
						molToA = molToA*dv + nonDerVal*(dvj+diag*jacVd.Data[idx])
						molToB = molToB*dv - nonDerVal*diag
					} else {
						molToA = molToA*dv + nonDerVal*dvj
						molToB *= dv
					}
					nonDerVal *= dv
				} else {
					nonDerVal *= dv
					molToA *= dv
					molToB *= dv
				}
			default:
				dv := st.Laplacian(vd, i, j, k)
				if uID == ad.UID {
					molToA = molToA*dv +
						nonDerVal*(st.Laplacian(jacVd, i, j, k)+3*diag*jacVd.Data[idx])
					molToB = molToB*dv - nonDerVal*3*diag
					nonDerVal *= dv
				} else {
					nonDerVal *= dv
					molToA *= dv
					molToB *= dv
				}
			}
		}
		coefA += molToA
		coefB += molToB
	}
	return
}
