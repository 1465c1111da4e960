package measures

import (
	"math"

	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
)

// QualityMap finds the fingerprint foreground and builds an orientation map
// over its blocks. Blocks outside the foreground are white in the map.
type QualityMap struct {
	module
	roi            *imaging.ROI
	orientationMap *imaging.Gray
}

// NewQualityMap computes the region of interest and orientation map of img.
func NewQualityMap(img *fingerprint.Image) (*QualityMap, error) {
	q := &QualityMap{}
	m, err := compute(QualityMapModuleID, img, func() (Set, error) {
		q.roi = imaging.RegionOfInterest(img, imaging.ROIBlockSize)

		var sum float64
		q.orientationMap, sum = orientationMap(imaging.FromImage(img), q.roi)
		rel := 0.0
		if len(q.roi.Blocks) > 0 {
			rel = sum / float64(len(q.roi.Blocks))
		}
		return Set{
			ROIAreaMean:  q.roi.Mean,
			CoherenceSum: sum,
			CoherenceRel: rel,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	q.module = m
	return q, nil
}

// ROI is the region of interest the map was filtered with.
func (q *QualityMap) ROI() *imaging.ROI { return q.roi }

// OrientationMap holds the block orientation in degrees for foreground
// blocks and 255 elsewhere.
func (q *QualityMap) OrientationMap() *imaging.Gray { return q.orientationMap }

func orientationMap(mat *imaging.Matrix, roi *imaging.ROI) (*imaging.Gray, float64) {
	om := imaging.NewGray(mat.Rows, mat.Cols)
	var coherenceSum float64
	for _, rc := range imaging.Blocks(mat.Rows, mat.Cols, roi.BlockSize) {
		value := uint8(255)
		if roi.Contains(rc) {
			angle, coherence := imaging.BlockCoherence(mat.SubRect(rc))
			if math.IsNaN(coherence) {
				coherence = 0
			}
			coherenceSum += coherence
			value = uint8(int(angle*180/math.Pi + 0.5))
		}
		for r := rc.Y; r < rc.Y+rc.H; r++ {
			for c := rc.X; c < rc.X+rc.W; c++ {
				om.Pix[r*om.Cols+c] = value
			}
		}
	}
	return om, coherenceSum
}
