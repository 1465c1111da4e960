package imaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RidgeValley describes the gray level profile across an oriented block.
type RidgeValley struct {
	// Profile is the mean of every column.
	Profile []float64
	// Trend is the least squares line through Profile.
	Trend []float64
	// Ridge marks columns darker than the trend.
	Ridge []bool
}

// RidgeValleyStructure projects the block onto its columns, fits a line to the
// profile and classifies each column as ridge (below the line) or valley.
// The fitted coefficients are rounded to ten decimals.
func RidgeValleyStructure(block *Matrix) (*RidgeValley, error) {
	profile := block.ColumnMeans()
	n := len(profile)
	if n < 2 {
		return nil, fmt.Errorf("profile needs at least two columns (got %d)", n)
	}

	design := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, float64(i+1))
	}
	rhs := mat.NewDense(n, 1, append([]float64(nil), profile...))

	var qr mat.QR
	qr.Factorize(design)
	var coef mat.Dense
	if err := qr.SolveTo(&coef, false, rhs); err != nil {
		return nil, fmt.Errorf("ridge/valley least squares: %w", err)
	}

	intercept := roundTo10(coef.At(0, 0))
	slope := roundTo10(coef.At(1, 0))

	rv := &RidgeValley{
		Profile: profile,
		Trend:   make([]float64, n),
		Ridge:   make([]bool, n),
	}
	for i := 0; i < n; i++ {
		rv.Trend[i] = float64(i+1)*slope + intercept
		rv.Ridge[i] = profile[i] < rv.Trend[i]
	}
	return rv, nil
}

func roundTo10(v float64) float64 {
	return math.Round(v*1e10) / 1e10
}
