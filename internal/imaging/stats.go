package imaging

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"
)

// Number is any sample type the statistics helpers accept.
type Number interface {
	constraints.Integer | constraints.Float
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// MeanStdDev returns the mean and the population standard deviation.
// gonum's StdDev uses the unbiased estimator, so the population form is
// derived from it.
func MeanStdDev(values []float64) (float64, float64) {
	n := len(values)
	switch n {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	return mean, std * math.Sqrt(float64(n-1)/float64(n))
}

// SampleStdDev returns the unbiased (n-1) standard deviation.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// ToFloat64 widens any numeric slice.
func ToFloat64[T Number](values []T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundHalfEven rounds to the nearest integer, ties to even.
func RoundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}
