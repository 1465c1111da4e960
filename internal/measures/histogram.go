package measures

import (
	"strconv"

	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
)

const histogramBins = 10

// Histogram buckets block values into ten bins separated by nine ascending
// breakpoints.
type Histogram struct {
	Prefix string
	Limits [histogramBins - 1]float64
}

var (
	fdaHistogram = Histogram{FDAPrefix, [9]float64{0.268, 0.304, 0.33, 0.355, 0.38, 0.407, 0.44, 0.50, 1}}
	lcsHistogram = Histogram{LCSPrefix, [9]float64{0, 0.70, 0.74, 0.77, 0.79, 0.81, 0.83, 0.85, 0.87}}
	oclHistogram = Histogram{OCLPrefix, [9]float64{0.337, 0.479, 0.579, 0.655, 0.716, 0.766, 0.81, 0.852, 0.898}}
	ofHistogram  = Histogram{OFPrefix, [9]float64{0.01715, 0.035, 0.0557, 0.081, 0.115, 0.1718, 0.2569, 0.4758, 0.748}}
	rvuHistogram = Histogram{RVUPrefix, [9]float64{0.5, 0.667, 0.8, 1, 1.25, 1.5, 2, 24, 30}}
)

// Bin returns the index of the first breakpoint v does not exceed, or the
// last bin.
func (h Histogram) Bin(v float64) int {
	for i, limit := range h.Limits {
		if v <= limit {
			return i
		}
	}
	return histogramBins - 1
}

// Encode returns the fraction of values in each bin plus their mean and
// population standard deviation. No values yields all zeros.
func (h Histogram) Encode(values []float64) Set {
	var counts [histogramBins]int
	for _, v := range values {
		counts[h.Bin(v)]++
	}

	out := make(Set, histogramBins+2)
	for i, c := range counts {
		frac := 0.0
		if len(values) > 0 {
			frac = float64(c) / float64(len(values))
		}
		out[h.Prefix+strconv.Itoa(i)] = frac
	}

	mean, std := imaging.MeanStdDev(values)
	out[h.Prefix+meanSuffix] = mean
	out[h.Prefix+stdDevSuffix] = std
	return out
}
