package imaging

import (
	"math"

	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
)

// Gray is an 8-bit working image for the region of interest pipeline.
type Gray struct {
	Rows int
	Cols int
	Pix  []uint8
}

// NewGray returns a black image.
func NewGray(rows, cols int) *Gray {
	return &Gray{Rows: rows, Cols: cols, Pix: make([]uint8, rows*cols)}
}

// GrayFromImage copies the fingerprint samples.
func GrayFromImage(img *fingerprint.Image) *Gray {
	return &Gray{Rows: img.Height(), Cols: img.Width(), Pix: img.Pixels()}
}

func (g *Gray) At(r, c int) uint8 { return g.Pix[r*g.Cols+c] }

func (g *Gray) Clone() *Gray {
	out := &Gray{Rows: g.Rows, Cols: g.Cols, Pix: make([]uint8, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// Erode applies a size x size minimum filter. Pixels outside the image are
// ignored.
func Erode(g *Gray, size int) *Gray {
	half := size / 2
	tmp := NewGray(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			m := uint8(255)
			for k := max(0, c-half); k <= min(g.Cols-1, c+half); k++ {
				if v := g.Pix[r*g.Cols+k]; v < m {
					m = v
				}
			}
			tmp.Pix[r*g.Cols+c] = m
		}
	}
	out := NewGray(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			m := uint8(255)
			for k := max(0, r-half); k <= min(g.Rows-1, r+half); k++ {
				if v := tmp.Pix[k*g.Cols+c]; v < m {
					m = v
				}
			}
			out.Pix[r*g.Cols+c] = m
		}
	}
	return out
}

// GaussianSigma is the envelope width used for a kernel of the given size
// when no sigma is specified.
func GaussianSigma(size int) float64 {
	return 0.3*((float64(size)-1)*0.5-1) + 0.8
}

func gaussianKernel(size int) []float64 {
	sigma := GaussianSigma(size)
	half := size / 2
	k := make([]float64, size)
	var sum float64
	for i := range k {
		x := float64(i - half)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// reflect101 maps an out of range index into [0, n) mirroring around the
// edge pixels without repeating them.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// GaussianBlur smooths g with a separable size x size Gaussian kernel and a
// mirrored border.
func GaussianBlur(g *Gray, size int) *Gray {
	k := gaussianKernel(size)
	half := size / 2
	tmp := make([]float64, len(g.Pix))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			var acc float64
			for i, w := range k {
				acc += w * float64(g.Pix[r*g.Cols+reflect101(c+i-half, g.Cols)])
			}
			tmp[r*g.Cols+c] = acc
		}
	}
	out := NewGray(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			var acc float64
			for i, w := range k {
				acc += w * tmp[reflect101(r+i-half, g.Rows)*g.Cols+c]
			}
			out.Pix[r*g.Cols+c] = uint8(Clamp(RoundHalfEven(acc), 0, 255))
		}
	}
	return out
}

// OtsuThreshold returns the gray level maximizing the between-class variance.
func OtsuThreshold(g *Gray) uint8 {
	var hist [256]float64
	for _, p := range g.Pix {
		hist[p]++
	}
	n := float64(len(g.Pix))
	var mu float64
	for i, h := range hist {
		mu += float64(i) * h / n
	}

	const fltEpsilon = 1.1920929e-07
	var mu1, q1, maxSigma float64
	best := 0
	for i, h := range hist {
		p := h / n
		mu1 *= q1
		q1 += p
		q2 := 1 - q1
		if math.Min(q1, q2) < fltEpsilon || math.Max(q1, q2) > 1-fltEpsilon {
			continue
		}
		mu1 = (mu1 + float64(i)*p) / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			best = i
		}
	}
	return uint8(best)
}

// Binarize maps pixels above t to 255 and the rest to 0.
func Binarize(g *Gray, t uint8) *Gray {
	out := NewGray(g.Rows, g.Cols)
	for i, p := range g.Pix {
		if p > t {
			out.Pix[i] = 255
		}
	}
	return out
}

// FloodFill sets the 4-connected region of equal value containing (r, c) to
// value and returns its bounding box.
func FloodFill(g *Gray, r, c int, value uint8) Rect {
	target := g.Pix[r*g.Cols+c]
	if target == value {
		return Rect{X: c, Y: r, W: 1, H: 1}
	}

	minR, maxR, minC, maxC := r, r, c, c
	stack := [][2]int{{r, c}}
	g.Pix[r*g.Cols+c] = value
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pr, pc := p[0], p[1]
		minR, maxR = min(minR, pr), max(maxR, pr)
		minC, maxC = min(minC, pc), max(maxC, pc)

		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nr, nc := pr+d[0], pc+d[1]
			if nr < 0 || nr >= g.Rows || nc < 0 || nc >= g.Cols {
				continue
			}
			if g.Pix[nr*g.Cols+nc] == target {
				g.Pix[nr*g.Cols+nc] = value
				stack = append(stack, [2]int{nr, nc})
			}
		}
	}
	return Rect{X: minC, Y: minR, W: maxC - minC + 1, H: maxR - minR + 1}
}

// FillHoles turns white (255) regions that do not touch the image border
// black, closing holes inside dark objects.
func FillHoles(g *Gray) *Gray {
	out := g.Clone()
	outside := g.Clone()
	const marker = 128
	seed := func(r, c int) {
		if outside.Pix[r*outside.Cols+c] == 255 {
			FloodFill(outside, r, c, marker)
		}
	}
	for c := 0; c < g.Cols; c++ {
		seed(0, c)
		seed(g.Rows-1, c)
	}
	for r := 0; r < g.Rows; r++ {
		seed(r, 0)
		seed(r, g.Cols-1)
	}
	for i, p := range outside.Pix {
		if p == 255 {
			out.Pix[i] = 0
		}
	}
	return out
}

// KeepLargestBlackRegion whitens every black 4-connected region except the
// one with the largest bounding box. Ties keep the first region found in
// row-major order.
func KeepLargestBlackRegion(g *Gray) *Gray {
	work := g.Clone()
	type region struct {
		r, c int
		box  Rect
	}
	var regions []region
	for i, p := range work.Pix {
		if p != 0 {
			continue
		}
		r, c := i/work.Cols, i%work.Cols
		box := FloodFill(work, r, c, 255)
		regions = append(regions, region{r: r, c: c, box: box})
	}

	largest, largestArea := 0, 0
	for i, reg := range regions {
		if area := reg.box.W * reg.box.H; area > largestArea {
			largest, largestArea = i, area
		}
	}

	out := g.Clone()
	for i, reg := range regions {
		if i != largest {
			FloodFill(out, reg.r, reg.c, 255)
		}
	}
	return out
}
