package measures

import (
	"math"

	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
)

// OrientationFlowMinAngle is the angle between neighbouring blocks, in degrees,
// above which the difference counts as a flow disturbance.
const OrientationFlowMinAngle = 4.0

// OrientationFlow histograms how far each block's orientation departs from
// its eight neighbours.
type OrientationFlow struct {
	module
}

// NewOrientationFlow computes the OF histogram of img.
func NewOrientationFlow(img *fingerprint.Image) (*OrientationFlow, error) {
	m, err := compute(OFModuleID, img, func() (Set, error) {
		var blocks []orientedBlock
		_, rows, cols, err := orientedWalk(img, func(b orientedBlock) error {
			b.Window = nil
			blocks = append(blocks, b)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return ofHistogram.Encode(orientationFlow(blocks, rows, cols)), nil
	})
	if err != nil {
		return nil, err
	}
	return &OrientationFlow{module: m}, nil
}

// orientationFlow returns the normalised local orientation quality of every
// block whose 3x3 neighbourhood is fully foreground and whose mean absolute
// angle difference exceeds the minimum. Neighbours outside the grid count as
// orientation 0 and background.
func orientationFlow(blocks []orientedBlock, rows, cols int) []float64 {
	orient := make([]float64, rows*cols)
	fg := make([]bool, rows*cols)
	for _, b := range blocks {
		orient[b.Row*cols+b.Col] = b.Orientation
		fg[b.Row*cols+b.Col] = b.Foreground
	}

	angMin := OrientationFlowMinAngle * math.Pi / 180
	angDiff := (90 - OrientationFlowMinAngle) * math.Pi / 180

	var values []float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			center := orient[i*cols+j]
			var sum float64
			allFg := true
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					r, c := i+di, j+dj
					if r < 0 || r >= rows || c < 0 || c >= cols {
						sum += math.Abs(center)
						allFg = false
						continue
					}
					sum += math.Abs(center - orient[r*cols+c])
					if !fg[r*cols+c] {
						allFg = false
					}
				}
			}
			loq := sum / 8
			if allFg && loq > angMin {
				values = append(values, (loq-angMin)/angDiff)
			}
		}
	}
	return values
}
