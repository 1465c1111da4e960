// Package imaging contains the block, gradient, rotation, filtering and
// segmentation primitives the quality measures are built from. Everything is
// computed in float64 with plain Go arithmetic so results do not depend on the
// host's floating point mode.
package imaging

import (
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
)

// Matrix is a dense row-major float64 matrix.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix returns a zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// FromImage converts the gray levels of img to a matrix.
func FromImage(img *fingerprint.Image) *Matrix {
	m := NewMatrix(img.Height(), img.Width())
	for y := 0; y < img.Height(); y++ {
		row := img.Row(y)
		off := y * m.Cols
		for x, p := range row {
			m.Data[off+x] = float64(p)
		}
	}
	return m
}

func (m *Matrix) At(r, c int) float64 { return m.Data[r*m.Cols+c] }
func (m *Matrix) Set(r, c int, v float64) { m.Data[r*m.Cols+c] = v }

// Sub copies the rectangle rows [r0, r1) and cols [c0, c1).
func (m *Matrix) Sub(r0, r1, c0, c1 int) *Matrix {
	out := NewMatrix(r1-r0, c1-c0)
	for r := r0; r < r1; r++ {
		copy(out.Data[(r-r0)*out.Cols:(r-r0+1)*out.Cols], m.Data[r*m.Cols+c0:r*m.Cols+c1])
	}
	return out
}

// SubRect copies the rectangle rc.
func (m *Matrix) SubRect(rc Rect) *Matrix {
	return m.Sub(rc.Y, rc.Y+rc.H, rc.X, rc.X+rc.W)
}

// Pad returns a copy with a constant zero border of n pixels.
func (m *Matrix) Pad(n int) *Matrix {
	out := NewMatrix(m.Rows+2*n, m.Cols+2*n)
	for r := 0; r < m.Rows; r++ {
		copy(out.Data[(r+n)*out.Cols+n:(r+n)*out.Cols+n+m.Cols], m.Data[r*m.Cols:(r+1)*m.Cols])
	}
	return out
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := NewMatrix(m.Rows, m.Cols)
	copy(out.Data, m.Data)
	return out
}

// Mean of all elements.
func (m *Matrix) Mean() float64 {
	return Mean(m.Data)
}

// MeanStdDev returns the mean and population standard deviation.
func (m *Matrix) MeanStdDev() (float64, float64) {
	return MeanStdDev(m.Data)
}

// ColumnMeans returns the mean of every column.
func (m *Matrix) ColumnMeans() []float64 {
	out := make([]float64, m.Cols)
	for c := 0; c < m.Cols; c++ {
		var sum float64
		for r := 0; r < m.Rows; r++ {
			sum += m.Data[r*m.Cols+c]
		}
		out[c] = sum / float64(m.Rows)
	}
	return out
}

// RowMeans returns the mean of every row.
func (m *Matrix) RowMeans() []float64 {
	out := make([]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		out[r] = Mean(m.Data[r*m.Cols : (r+1)*m.Cols])
	}
	return out
}

// Mask is a binary image.
type Mask struct {
	Rows int
	Cols int
	Data []bool
}

// NewMask returns an all-false mask.
func NewMask(rows, cols int) *Mask {
	return &Mask{Rows: rows, Cols: cols, Data: make([]bool, rows*cols)}
}

func (k *Mask) At(r, c int) bool { return k.Data[r*k.Cols+c] }
func (k *Mask) Set(r, c int, v bool) { k.Data[r*k.Cols+c] = v }

// All reports whether every pixel inside rc is set.
func (k *Mask) All(rc Rect) bool {
	for r := rc.Y; r < rc.Y+rc.H; r++ {
		for c := rc.X; c < rc.X+rc.W; c++ {
			if !k.Data[r*k.Cols+c] {
				return false
			}
		}
	}
	return true
}

// Count returns the number of set pixels.
func (k *Mask) Count() int {
	n := 0
	for _, v := range k.Data {
		if v {
			n++
		}
	}
	return n
}
