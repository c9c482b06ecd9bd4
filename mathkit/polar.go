package mathkit

import "gonum.org/v1/gonum/mat"

// PolarDecompose factors F = R*U where R is proper-orthogonal (a rotation)
// and U is symmetric positive-definite, via the singular value
// decomposition F = U_svd*Sigma*V^T => R = U_svd*V^T, U = V*Sigma*V^T.
//
// It reports success=false on SVD failure. Per spec, failure is fatal if
// ever observed on a well-conditioned F — callers treat a false return as
// an IntegrationError, not a recoverable condition.
func PolarDecompose(f Mat3) (r, u Mat3, success bool) {
	var svd mat.SVD
	dense := mat.NewDense(3, 3, flatten(f))
	ok := svd.Factorize(dense, mat.SVDFull)
	if !ok {
		return Mat3{}, Mat3{}, false
	}

	var uSvd, v mat.Dense
	svd.UTo(&uSvd)
	svd.VTo(&v)
	sv := svd.Values(nil)

	uSvdMat := unflatten(&uSvd)
	vMat := unflatten(&v)

	r = uSvdMat.Mul(vMat.T())

	// det(R) should be +1 for a proper rotation; if the SVD produced a
	// reflection (det=-1), flip the sign of U_svd's last column to recover
	// a proper rotation. U = V*Sigma*V^T does not depend on U_svd, so this
	// correction leaves the stretch factor unaffected.
	if r.Det() < 0 {
		uSvdMat[0][2], uSvdMat[1][2], uSvdMat[2][2] = -uSvdMat[0][2], -uSvdMat[1][2], -uSvdMat[2][2]
		r = uSvdMat.Mul(vMat.T())
	}

	var sigma Mat3
	sigma[0][0], sigma[1][1], sigma[2][2] = sv[0], sv[1], sv[2]
	u = vMat.Mul(sigma).Mul(vMat.T())

	return r, u, true
}

func flatten(m Mat3) []float64 {
	out := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[3*i+j] = m[i][j]
		}
	}
	return out
}

func unflatten(d *mat.Dense) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}
