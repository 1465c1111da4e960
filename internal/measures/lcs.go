package measures

import (
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
)

// Ridge and valley width limits in pixels at 500 ppi, normalised by the
// maximum width at 125 ppi scaled to 500 ppi.
const (
	clarityScaleNorm = (500.0 / 125.0) * 5.0
	clarityRidgeMin  = 3.0 / clarityScaleNorm
	clarityRidgeMax  = 10.0 / clarityScaleNorm
	clarityValleyMin = 2.0 / clarityScaleNorm
	clarityValleyMax = 10.0 / clarityScaleNorm
)

// LocalClarity measures how cleanly ridges and valleys separate around the
// local trend inside each foreground block.
type LocalClarity struct {
	module
}

// NewLocalClarity computes the LCS histogram of img.
func NewLocalClarity(img *fingerprint.Image) (*LocalClarity, error) {
	m, err := compute(LCSModuleID, img, func() (Set, error) {
		var values []float64
		_, _, _, err := orientedWalk(img, func(b orientedBlock) error {
			if !b.Foreground {
				return nil
			}
			lcs, err := localClarity(b.Window, b.Orientation)
			if err != nil {
				return err
			}
			values = append(values, lcs)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return lcsHistogram.Encode(values), nil
	})
	if err != nil {
		return nil, err
	}
	return &LocalClarity{module: m}, nil
}

// localClarity returns 1 for perfectly separated ridges and valleys and 0
// when the block has no usable structure.
func localClarity(window *imaging.Matrix, orientation float64) (float64, error) {
	rotated, err := imaging.RotatedBlock(window, orientation, false)
	if err != nil {
		return 0, err
	}
	geom := imaging.NewSlantedGeometry(slantedBlockSize)
	v2 := rotated.CenterCrop(geom.WindowY, geom.WindowX)

	rv, err := imaging.RidgeValleyStructure(v2)
	if err != nil {
		return 0, err
	}
	ridge := rv.Ridge
	n := len(ridge)

	// Columns after which the classification flips.
	var changes []int
	for i := 1; i < n; i++ {
		if ridge[i] != ridge[i-1] {
			changes = append(changes, i-1)
		}
	}
	if len(changes) == 0 {
		return 0, nil
	}

	widths := make([]float64, len(changes))
	widths[0] = float64(changes[0])
	for i := 1; i < len(changes); i++ {
		widths[i] = float64(changes[i] - changes[i-1])
	}

	var ridgeWidths, valleyWidths []float64
	for i, w := range widths {
		// Widths alternate starting with the class of the first column.
		if (i%2 == 0) == ridge[0] {
			ridgeWidths = append(ridgeWidths, w/clarityScaleNorm)
		} else {
			valleyWidths = append(valleyWidths, w/clarityScaleNorm)
		}
	}

	muRidge := imaging.Mean(ridgeWidths)
	muValley := imaging.Mean(valleyWidths)
	if muRidge < clarityRidgeMin || muRidge > clarityRidgeMax ||
		muValley < clarityValleyMin || muValley > clarityValleyMax {
		return 0, nil
	}

	var ridgeGood, ridgeTotal, valleyGood, valleyTotal int
	for c := 0; c < v2.Cols; c++ {
		for r := 0; r < v2.Rows; r++ {
			v := v2.At(r, c)
			if ridge[c] {
				ridgeTotal++
				if v >= rv.Trend[c] {
					ridgeGood++
				}
			} else {
				valleyTotal++
				if v < rv.Trend[c] {
					valleyGood++
				}
			}
		}
	}
	alpha := ratio(valleyGood, valleyTotal)
	beta := ratio(ridgeGood, ridgeTotal)
	return 1 - (alpha+beta)/2, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
