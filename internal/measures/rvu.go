package measures

import (
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
)

// RidgeValleyUniformity histograms the ratios of consecutive ridge and valley
// widths across foreground blocks.
type RidgeValleyUniformity struct {
	module
}

// NewRidgeValleyUniformity computes the RVU histogram of img.
func NewRidgeValleyUniformity(img *fingerprint.Image) (*RidgeValleyUniformity, error) {
	m, err := compute(RVUModuleID, img, func() (Set, error) {
		var values []float64
		_, _, _, err := orientedWalk(img, func(b orientedBlock) error {
			if !b.Foreground {
				return nil
			}
			ratios, err := ridgeValleyRatios(b.Window, b.Orientation)
			if err != nil {
				return err
			}
			values = append(values, ratios...)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return rvuHistogram.Encode(values), nil
	})
	if err != nil {
		return nil, err
	}
	return &RidgeValleyUniformity{module: m}, nil
}

// ridgeValleyRatios returns width ratios of the complete ridges and valleys
// in a block. Partial structures at the block borders are dropped.
func ridgeValleyRatios(window *imaging.Matrix, orientation float64) ([]float64, error) {
	rotated, err := imaging.RotatedBlock(window, orientation, true)
	if err != nil {
		return nil, err
	}
	geom := imaging.NewSlantedGeometry(slantedBlockSize)
	v2 := rotated.CenterCrop(geom.WindowY, geom.WindowX)

	rv, err := imaging.RidgeValleyStructure(v2)
	if err != nil {
		return nil, err
	}
	ridge := rv.Ridge
	n := len(ridge)

	// The last column is not compared.
	var changes []int
	for i := 1; i < n-1; i++ {
		if ridge[i] != ridge[i-1] {
			changes = append(changes, i-1)
		}
	}
	if len(changes) == 0 {
		return nil, nil
	}

	first, last := changes[0], changes[len(changes)-1]
	if first+1 >= last {
		return nil, nil
	}
	beginsWithRidge := ridge[first+1]

	complete := make([]int, 0, len(changes)-1)
	for _, c := range changes[1:] {
		complete = append(complete, c-first)
	}
	if len(complete) < 2 {
		return nil, nil
	}

	// Widths, last structure first.
	widths := make([]float64, 0, len(complete)-1)
	for i := len(complete) - 1; i > 0; i-- {
		widths = append(widths, float64(complete[i]-complete[i-1]))
	}

	ratios := make([]float64, 0, len(widths))
	for m := 0; m+1 < len(widths); m++ {
		ratios = append(ratios, widths[m]/widths[m+1])
	}
	start := 0
	if beginsWithRidge {
		start = 1
	}
	for i := start; i < len(ratios); i += 2 {
		ratios[i] = 1 / ratios[i]
	}
	return ratios, nil
}
