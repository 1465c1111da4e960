package measures

import (
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
)

// Parameters of the oriented block walk shared by LCS, RVU, OF and FDA.
const (
	slantedBlockSize      = 32
	segmentationBlockSize = 32
	segmentationThreshold = 0.1
)

// orientedBlock is one step of the oriented walk. Orientation is the angle of
// the line perpendicular to the ridges inside the block.
type orientedBlock struct {
	imaging.SlantedBlock
	Foreground  bool
	Orientation float64
	Window      *imaging.Matrix
}

// orientedWalk segments the image and visits every inner block with its
// orientation and the extended window around it. mapRows and mapCols give the
// block grid size.
func orientedWalk(img *fingerprint.Image, fn func(b orientedBlock) error) (geom imaging.SlantedGeometry, mapRows, mapCols int, err error) {
	mat := imaging.FromImage(img)
	seg := imaging.Segment(mat, segmentationBlockSize, segmentationThreshold)

	geom = imaging.NewSlantedGeometry(slantedBlockSize)
	mapRows, mapCols, blocks := geom.Walk(mat.Rows, mat.Cols)
	for _, sb := range blocks {
		ob := orientedBlock{
			SlantedBlock: sb,
			Foreground:   seg.Mask.All(sb.Block),
			Orientation:  imaging.CovarianceCoefficients(mat.SubRect(sb.Block)).Orientation(),
			Window:       mat.SubRect(sb.Window),
		}
		if err := fn(ob); err != nil {
			return geom, mapRows, mapCols, err
		}
	}
	return geom, mapRows, mapCols, nil
}
