package imaging

import (
	"fmt"
	"math"
)

const (
	rotatePad = 2
	// Fixed point precision of the nearest neighbour sampler.
	affineBits  = 10
	affineScale = 1 << affineBits
	affineRound = affineScale / 2
)

// RotatedBlock rotates block by angle (radians, counter-clockwise) about its
// centre with nearest neighbour sampling and returns a block of the same size.
// Samples falling outside the source are zero. With pad set, a zero border of
// two pixels is added before rotating. The block must have an even number of
// rows.
func RotatedBlock(block *Matrix, angle float64, pad bool) (*Matrix, error) {
	if block.Rows%2 != 0 {
		return nil, fmt.Errorf("block must have an even number of rows (got %d)", block.Rows)
	}

	src := block
	if pad {
		src = block.Pad(rotatePad)
	}

	// Forward map around the source centre.
	cx := float64(src.Cols) / 2
	cy := float64(src.Rows) / 2
	rad := (angle * 180 / math.Pi) * math.Pi / 180
	alpha := math.Cos(rad)
	beta := math.Sin(rad)
	m00, m01, m02 := alpha, beta, (1-alpha)*cx-beta*cy
	m10, m11, m12 := -beta, alpha, beta*cx+(1-alpha)*cy

	// Invert it to map destination pixels to source pixels.
	det := m00*m11 - m01*m10
	if det == 0 {
		return nil, fmt.Errorf("degenerate rotation")
	}
	d := 1 / det
	a11, a22 := m11*d, m00*d
	a12, a21 := -m01*d, -m10*d
	b1 := -a11*m02 - a12*m12
	b2 := -a21*m02 - a22*m12

	out := NewMatrix(block.Rows, block.Cols)
	adelta := make([]int, out.Cols)
	bdelta := make([]int, out.Cols)
	for x := 0; x < out.Cols; x++ {
		adelta[x] = RoundHalfEven(a11 * float64(x) * affineScale)
		bdelta[x] = RoundHalfEven(a21 * float64(x) * affineScale)
	}

	for y := 0; y < out.Rows; y++ {
		x0 := RoundHalfEven((a12*float64(y)+b1)*affineScale) + affineRound
		y0 := RoundHalfEven((a22*float64(y)+b2)*affineScale) + affineRound
		for x := 0; x < out.Cols; x++ {
			sx := (x0 + adelta[x]) >> affineBits
			sy := (y0 + bdelta[x]) >> affineBits
			if sx >= 0 && sx < src.Cols && sy >= 0 && sy < src.Rows {
				out.Data[y*out.Cols+x] = src.Data[sy*src.Cols+sx]
			}
		}
	}
	return out, nil
}

// CenterCrop extracts a rows x cols window centred the way the oriented
// sampling window is: rows [c-(rows/2-1)-1, c+rows/2) around c = Rows/2, and
// the same for columns.
func (m *Matrix) CenterCrop(rows, cols int) *Matrix {
	cr := m.Rows / 2
	cc := m.Rows / 2
	r0 := cr - (rows/2 - 1) - 1
	c0 := cc - (cols/2 - 1) - 1
	return m.Sub(r0, cr+rows/2, c0, cc+cols/2)
}
