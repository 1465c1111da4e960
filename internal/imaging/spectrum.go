package imaging

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// DFTMagnitude returns |DFT(signal)|.
func DFTMagnitude(signal []float64) []float64 {
	spectrum := fft.FFTReal(signal)
	out := make([]float64, len(spectrum))
	for i, c := range spectrum {
		out[i] = cmplx.Abs(c)
	}
	return out
}

// GaborKernel builds a size x size complex Gabor kernel. theta is the
// orientation of the normal to the stripes in radians, freq the spatial
// frequency in cycles per pixel and sigma the envelope width. size should be
// odd.
func GaborKernel(size int, theta, freq, sigma float64) [][]complex128 {
	half := (size - 1) / 2
	scale := 1 / (sigma * sigma)
	sinT, cosT := math.Sin(theta), math.Cos(theta)

	kernel := make([][]complex128, size)
	for r := range kernel {
		kernel[r] = make([]complex128, size)
	}
	for i := -half; i <= half; i++ {
		for j := -half; j <= half; j++ {
			x1 := float64(i)*sinT + float64(j)*cosT
			y1 := float64(i)*cosT - float64(j)*sinT
			env := math.Exp(-0.5 * scale * (x1*x1 + y1*y1))
			phase := 2 * math.Pi * freq * x1
			kernel[j+half][i+half] = complex(env*math.Cos(phase), env*math.Sin(phase))
		}
	}
	return kernel
}

// GaborEnergy correlates the kernel with the block centred on every pixel
// whose neighbourhood fits inside it and returns the mean response magnitude.
// A block smaller than the kernel has zero energy.
func GaborEnergy(block *Matrix, kernel [][]complex128) float64 {
	size := len(kernel)
	if size == 0 || block.Rows < size || block.Cols < size {
		return 0
	}

	var sum float64
	count := 0
	for r := 0; r+size <= block.Rows; r++ {
		for c := 0; c+size <= block.Cols; c++ {
			var acc complex128
			for kr := 0; kr < size; kr++ {
				row := block.Data[(r+kr)*block.Cols+c : (r+kr)*block.Cols+c+size]
				for kc, v := range row {
					acc += kernel[kr][kc] * complex(v, 0)
				}
			}
			sum += cmplx.Abs(acc)
			count++
		}
	}
	return sum / float64(count)
}
