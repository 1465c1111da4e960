package measures

import (
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
	"github.com/anime-shed/fingerprint-quality-go/internal/minutiae"
)

const (
	comRectSize          = 200
	minutiaBlockSize     = 32
	minutiaMuUpper       = 0.5
	minutiaOCLThreshold  = 80
	missingMinutiaeValue = -1
)

// MinutiaeQuality derives count and local quality measures from externally
// extracted minutiae.
type MinutiaeQuality struct {
	module
	extracted bool
}

// NewMinutiaeQuality computes the minutiae measures of img. When extraction
// failed or found no minutiae the counts are 0 and both quality measures
// are -1.
func NewMinutiaeQuality(img *fingerprint.Image, res minutiae.Result) (*MinutiaeQuality, error) {
	m, err := compute(MinutiaeModuleID, img, func() (Set, error) {
		if !res.Extracted {
			return Set{
				MinutiaeCount:      0,
				MinutiaeCountCOM:   0,
				MinutiaeMuQuality:  missingMinutiaeValue,
				MinutiaeOCLQuality: missingMinutiaeValue,
			}, nil
		}
		if err := minutiae.Validate(res.Minutiae, img.Width(), img.Height()); err != nil {
			return nil, err
		}

		ms := res.Minutiae
		set := Set{MinutiaeCount: float64(len(ms))}
		if len(ms) == 0 {
			set[MinutiaeCountCOM] = 0
			set[MinutiaeMuQuality] = missingMinutiaeValue
			set[MinutiaeOCLQuality] = missingMinutiaeValue
			return set, nil
		}

		cx, cy := minutiae.CenterOfMass(ms)
		set[MinutiaeCountCOM] = float64(minutiae.CountInRect(ms, cx, cy, comRectSize, comRectSize, img.Width(), img.Height()))

		mat := imaging.FromImage(img)
		set[MinutiaeMuQuality] = muMinutiaeQuality(mat, ms)
		set[MinutiaeOCLQuality] = oclMinutiaeQuality(mat, ms)
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return &MinutiaeQuality{module: m, extracted: res.Extracted}, nil
}

// Extracted reports whether minutiae were available.
func (q *MinutiaeQuality) Extracted() bool { return q.extracted }

// muMinutiaeQuality is the fraction of minutiae whose surrounding block is
// slightly darker than the image: 0 < (image mean - block mean)/image std <= 0.5.
// Blocks are clipped at the image border.
func muMinutiaeQuality(mat *imaging.Matrix, ms []minutiae.Minutia) float64 {
	mean, std := mat.MeanStdDev()
	n := 0
	for _, m := range ms {
		x0 := max(m.X-minutiaBlockSize/2, 0)
		y0 := max(m.Y-minutiaBlockSize/2, 0)
		w := min(minutiaBlockSize, mat.Cols-x0)
		h := min(minutiaBlockSize, mat.Rows-y0)
		q := (mean - mat.SubRect(imaging.Rect{X: x0, Y: y0, W: w, H: h}).Mean()) / std
		if q > 0 && q <= minutiaMuUpper {
			n++
		}
	}
	return float64(n) / float64(len(ms))
}

// oclMinutiaeQuality is the fraction of minutiae whose surrounding block has
// an orientation certainty above 0.8. Blocks are shifted to lie inside the
// image and shrink to the image size when it is smaller than a block.
func oclMinutiaeQuality(mat *imaging.Matrix, ms []minutiae.Minutia) float64 {
	w := min(minutiaBlockSize, mat.Cols)
	h := min(minutiaBlockSize, mat.Rows)
	n := 0
	for _, m := range ms {
		x0 := min(max(m.X-minutiaBlockSize/2, 0), mat.Cols-w)
		y0 := min(max(m.Y-minutiaBlockSize/2, 0), mat.Rows-h)
		ocl, _ := blockCertainty(mat.SubRect(imaging.Rect{X: x0, Y: y0, W: w, H: h}))
		if int(ocl*100+0.5) > minutiaOCLThreshold {
			n++
		}
	}
	return float64(n) / float64(len(ms))
}
