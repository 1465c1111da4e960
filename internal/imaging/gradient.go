package imaging

import "math"

// Gradient estimates the partial derivatives of m with finite differences:
// central differences inside, one-sided differences on the first and last
// row/column. gx runs along columns, gy along rows. A dimension of length one
// has a zero derivative.
func Gradient(m *Matrix) (gx, gy *Matrix) {
	gx = NewMatrix(m.Rows, m.Cols)
	gy = NewMatrix(m.Rows, m.Cols)

	if m.Cols > 1 {
		for r := 0; r < m.Rows; r++ {
			row := m.Data[r*m.Cols : (r+1)*m.Cols]
			out := gx.Data[r*m.Cols : (r+1)*m.Cols]
			diff1D(row, out)
		}
	}
	if m.Rows > 1 {
		col := make([]float64, m.Rows)
		out := make([]float64, m.Rows)
		for c := 0; c < m.Cols; c++ {
			for r := 0; r < m.Rows; r++ {
				col[r] = m.Data[r*m.Cols+c]
			}
			diff1D(col, out)
			for r := 0; r < m.Rows; r++ {
				gy.Data[r*m.Cols+c] = out[r]
			}
		}
	}
	return gx, gy
}

func diff1D(in, out []float64) {
	n := len(in)
	out[0] = in[1] - in[0]
	out[n-1] = in[n-1] - in[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (in[i+1] - in[i-1]) / 2
	}
}

// Covariance holds the averaged structure tensor [A C; C B] of a block.
type Covariance struct {
	A, B, C float64
}

// CovarianceCoefficients averages gx², gy² and gx·gy over the block.
func CovarianceCoefficients(block *Matrix) Covariance {
	gx, gy := Gradient(block)
	return covarianceFromGradients(gx.Data, gy.Data)
}

func covarianceFromGradients(gx, gy []float64) Covariance {
	n := float64(len(gx))
	if n == 0 {
		return Covariance{}
	}
	var a, b, c float64
	for i := range gx {
		a += gx[i] * gx[i]
		b += gy[i] * gy[i]
		c += gx[i] * gy[i]
	}
	return Covariance{A: a / n, B: b / n, C: c / n}
}

// Orientation is the angle of the line perpendicular to the ridge flow, in
// radians.
func (cv Covariance) Orientation() float64 {
	diff := cv.A - cv.B
	denom := cv.C*cv.C + diff*diff + epsilon
	return math.Atan2(cv.C/denom, diff/denom) / 2
}

// Eigenvalues of the structure tensor, largest first.
func (cv Covariance) Eigenvalues() (float64, float64) {
	root := math.Sqrt((cv.A-cv.B)*(cv.A-cv.B) + 4*cv.C*cv.C)
	return (cv.A + cv.B + root) / 2, (cv.A + cv.B - root) / 2
}

// Certainty returns 1 - λmin/λmax. ok is false when λmax is zero and the
// orientation is undefined.
func (cv Covariance) Certainty() (certainty float64, ok bool) {
	lmax, lmin := cv.Eigenvalues()
	if lmax == 0 {
		return 0, false
	}
	return 1 - lmin/lmax, true
}

// epsilon is the double precision machine epsilon.
const epsilon = 2.220446049250313e-16

// BlockCoherence computes the doubled-angle orientation and coherence of a
// block from its per pixel gradients. NaN gradients count as zero.
func BlockCoherence(block *Matrix) (angle, coherence float64) {
	gx, gy := Gradient(block)
	var sumX, sumY, norm float64
	for i := range gx.Data {
		x, y := gx.Data[i], gy.Data[i]
		if math.IsNaN(x) {
			x = 0
		}
		if math.IsNaN(y) {
			y = 0
		}
		ty := 2 * x * y
		tx := x*x - y*y
		sumY += ty
		sumX += tx
		norm += math.Sqrt(ty*ty + tx*tx)
	}
	angle = 0.5*math.Atan2(sumY, sumX) + math.Pi/2
	if norm == 0 {
		return angle, 0
	}
	return angle, math.Sqrt(sumX*sumX+sumY*sumY) / norm
}
