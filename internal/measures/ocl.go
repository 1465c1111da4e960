package measures

import (
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
)

const oclBlockSize = 32

// OrientationCertainty histograms 1 - λmin/λmax of the gradient structure
// tensor over every complete 32x32 block.
type OrientationCertainty struct {
	module
}

// NewOrientationCertainty computes the OCL histogram of img.
func NewOrientationCertainty(img *fingerprint.Image) (*OrientationCertainty, error) {
	m, err := compute(OCLModuleID, img, func() (Set, error) {
		mat := imaging.FromImage(img)
		var values []float64
		for _, rc := range imaging.FullBlocks(mat.Rows, mat.Cols, oclBlockSize) {
			if ocl, ok := blockCertainty(mat.SubRect(rc)); ok {
				values = append(values, ocl)
			}
		}
		return oclHistogram.Encode(values), nil
	})
	if err != nil {
		return nil, err
	}
	return &OrientationCertainty{module: m}, nil
}

// blockCertainty is false for blocks without any gradient.
func blockCertainty(block *imaging.Matrix) (float64, bool) {
	return imaging.CovarianceCoefficients(block).Certainty()
}
