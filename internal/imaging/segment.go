package imaging

// Segmentation is the result of ridge segmentation.
type Segmentation struct {
	// Normalized has zero mean and unit standard deviation over the
	// foreground pixels.
	Normalized *Matrix
	// Mask is set on pixels of blocks whose local contrast exceeds the
	// threshold.
	Mask *Mask
	// Index holds the 1-based column-major linear indices of Mask pixels.
	Index []int
}

// Segment separates ridge-like regions from background. The image is
// normalized to zero mean and unit standard deviation, each blockSize tile is
// replaced by its standard deviation, and tiles above threshold form the
// foreground.
func Segment(img *Matrix, blockSize int, threshold float64) *Segmentation {
	norm := img.Clone()
	mean, std := norm.MeanStdDev()
	mask := NewMask(img.Rows, img.Cols)

	if std == 0 {
		return &Segmentation{Normalized: norm, Mask: mask}
	}
	for i, v := range norm.Data {
		norm.Data[i] = (v - mean) / std
	}

	for _, rc := range Blocks(img.Rows, img.Cols, blockSize) {
		_, blockStd := norm.SubRect(rc).MeanStdDev()
		fg := blockStd > threshold
		for r := rc.Y; r < rc.Y+rc.H; r++ {
			for c := rc.X; c < rc.X+rc.W; c++ {
				mask.Set(r, c, fg)
			}
		}
	}

	var index []int
	var fgValues []float64
	linear := 1
	for c := 0; c < mask.Cols; c++ {
		for r := 0; r < mask.Rows; r++ {
			if mask.At(r, c) {
				index = append(index, linear)
				fgValues = append(fgValues, norm.At(r, c))
			}
			linear++
		}
	}

	if len(fgValues) > 0 {
		fgMean, fgStd := MeanStdDev(fgValues)
		if fgStd > 0 {
			for i, v := range norm.Data {
				norm.Data[i] = (v - fgMean) / fgStd
			}
		}
	}

	return &Segmentation{Normalized: norm, Mask: mask, Index: index}
}
