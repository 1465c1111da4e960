package imaging

import (
	"math"

	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
)

// ROI block size and smoothing parameters.
const (
	ROIBlockSize     = 16
	roiErodeSize     = 5
	roiFirstBlurSize = 41
	roiFinalBlurSize = 91
)

// ROI is the fingerprint foreground found by smoothing and thresholding.
type ROI struct {
	BlockSize      int
	Blocks         []Rect
	AllBlocks      int
	CompleteBlocks int
	ImagePixels    int
	Pixels         int
	Mean           float64
	StdDev         float64
	// Map is 0 on foreground pixels and 255 elsewhere.
	Map *Gray
}

// Contains reports whether rc is one of the foreground blocks.
func (roi *ROI) Contains(rc Rect) bool {
	for _, b := range roi.Blocks {
		if b == rc {
			return true
		}
	}
	return false
}

// RegionOfInterest erodes and blurs the image, applies Otsu thresholding
// twice, closes holes and keeps the largest dark region. Blocks of blockSize
// that contain any foreground pixel are ROI blocks.
func RegionOfInterest(img *fingerprint.Image, blockSize int) *ROI {
	gray := GrayFromImage(img)

	eroded := Erode(gray, roiErodeSize)
	blurred := GaussianBlur(eroded, roiFirstBlurSize)
	thresh := Binarize(blurred, OtsuThreshold(blurred))
	blurred2 := GaussianBlur(thresh, roiFinalBlurSize)
	thresh2 := Binarize(blurred2, OtsuThreshold(blurred2))

	filled := KeepLargestBlackRegion(FillHoles(thresh2))

	roi := &ROI{
		BlockSize:   blockSize,
		ImagePixels: len(gray.Pix),
		Map:         filled,
	}

	var sum float64
	for i, p := range filled.Pix {
		if p == 0 {
			roi.Pixels++
			sum += float64(gray.Pix[i])
		}
	}
	if roi.Pixels == 0 {
		roi.Mean = 255
	} else {
		roi.Mean = sum / float64(roi.Pixels)
	}
	if roi.Pixels > 1 {
		var sq float64
		for i, p := range filled.Pix {
			if p == 0 {
				d := float64(gray.Pix[i]) - roi.Mean
				sq += d * d
			}
		}
		roi.StdDev = math.Sqrt(sq / float64(roi.Pixels-1))
	}

	for _, rc := range Blocks(filled.Rows, filled.Cols, blockSize) {
		roi.AllBlocks++
		if rc.W == blockSize && rc.H == blockSize {
			roi.CompleteBlocks++
		}
		if blockHasForeground(filled, rc) {
			roi.Blocks = append(roi.Blocks, rc)
		}
	}
	return roi
}

func blockHasForeground(g *Gray, rc Rect) bool {
	for r := rc.Y; r < rc.Y+rc.H; r++ {
		for c := rc.X; c < rc.X+rc.W; c++ {
			if g.Pix[r*g.Cols+c] != 255 {
				return true
			}
		}
	}
	return false
}
