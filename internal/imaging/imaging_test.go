package imaging

import (
	"math"
	"testing"
)

func matrixFrom(rows, cols int, f func(r, c int) float64) *Matrix {
	m := NewMatrix(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.Set(r, c, f(r, c))
		}
	}
	return m
}

func TestBlocks_Truncation(t *testing.T) {
	blocks := Blocks(70, 40, 32)
	if len(blocks) != 6 {
		t.Fatalf("Expected 6 blocks, got %d", len(blocks))
	}
	last := blocks[len(blocks)-1]
	if last.W != 8 || last.H != 6 {
		t.Errorf("Expected truncated 8x6 corner block, got %dx%d", last.W, last.H)
	}
	if got := len(FullBlocks(70, 40, 32)); got != 2 {
		t.Errorf("Expected 2 full blocks, got %d", got)
	}
}

func TestSlantedGeometry(t *testing.T) {
	g := NewSlantedGeometry(32)
	if g.Offset != 2 || g.WindowX != 32 || g.WindowY != 16 {
		t.Errorf("Expected offset 2 and window 32x16, got %d and %dx%d", g.Offset, g.WindowX, g.WindowY)
	}

	rows, cols, blocks := g.Walk(300, 200)
	if rows != 9 || cols != 6 {
		t.Errorf("Expected 9x6 map, got %dx%d", rows, cols)
	}
	for _, b := range blocks {
		if b.Window.W != 36 || b.Window.H != 36 {
			t.Fatalf("Expected 36x36 windows, got %dx%d", b.Window.W, b.Window.H)
		}
	}
}

func TestGradient(t *testing.T) {
	m := matrixFrom(3, 4, func(r, c int) float64 { return float64(c*c + 2*r) })
	gx, gy := Gradient(m)

	// d/dx of c² with central differences: edges one-sided.
	wantX := []float64{1, 2, 4, 5}
	for c, want := range wantX {
		if gx.At(1, c) != want {
			t.Errorf("Expected gx[1][%d]=%v, got %v", c, want, gx.At(1, c))
		}
	}
	for r := 0; r < 3; r++ {
		if gy.At(r, 2) != 2 {
			t.Errorf("Expected gy[%d][2]=2, got %v", r, gy.At(r, 2))
		}
	}
}

func TestCovariance_Certainty(t *testing.T) {
	stripes := matrixFrom(32, 32, func(r, c int) float64 { return 100 + 50*math.Sin(float64(c)*math.Pi/4) })
	cov := CovarianceCoefficients(stripes)
	certainty, ok := cov.Certainty()
	if !ok {
		t.Fatal("Expected stripes to have a defined orientation")
	}
	if math.Abs(certainty-1) > 1e-12 {
		t.Errorf("Expected certainty 1 for ideal stripes, got %v", certainty)
	}

	flat := matrixFrom(32, 32, func(r, c int) float64 { return 128 })
	if _, ok := CovarianceCoefficients(flat).Certainty(); ok {
		t.Error("Expected uniform block to be excluded")
	}
}

func TestCovariance_Orientation(t *testing.T) {
	vertical := Covariance{A: 10, B: 0, C: 0}
	if got := vertical.Orientation(); math.Abs(got) > 1e-12 {
		t.Errorf("Expected orientation 0 for horizontal gradients, got %v", got)
	}
	horizontal := Covariance{A: 0, B: 10, C: 0}
	if got := horizontal.Orientation(); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("Expected orientation pi/2 for vertical gradients, got %v", got)
	}
}

func TestBlockCoherence(t *testing.T) {
	stripes := matrixFrom(16, 16, func(r, c int) float64 { return 100 + 50*math.Sin(float64(r)*math.Pi/3) })
	_, coherence := BlockCoherence(stripes)
	if math.Abs(coherence-1) > 1e-9 {
		t.Errorf("Expected coherence 1 for parallel stripes, got %v", coherence)
	}

	flat := matrixFrom(16, 16, func(r, c int) float64 { return 7 })
	if _, coherence := BlockCoherence(flat); coherence != 0 {
		t.Errorf("Expected coherence 0 for flat block, got %v", coherence)
	}
}

func TestRotatedBlock(t *testing.T) {
	block := matrixFrom(4, 4, func(r, c int) float64 { return float64(r*4 + c + 1) })

	same, err := RotatedBlock(block, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := range block.Data {
		if same.Data[i] != block.Data[i] {
			t.Fatalf("Expected identity rotation, got %v", same.Data)
		}
	}

	padded, err := RotatedBlock(block, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if padded.At(0, 0) != 0 || padded.At(2, 2) != block.At(0, 0) {
		t.Errorf("Expected padded block shifted by two, got %v", padded.Data)
	}

	flipped, err := RotatedBlock(block, math.Pi, false)
	if err != nil {
		t.Fatal(err)
	}
	if flipped.At(1, 1) != block.At(3, 3) || flipped.At(0, 0) != 0 {
		t.Errorf("Expected half turn about (2,2), got %v", flipped.Data)
	}

	if _, err := RotatedBlock(NewMatrix(3, 4), 0.3, false); err == nil {
		t.Error("Expected error for odd row count")
	}
}

func TestCenterCrop(t *testing.T) {
	m := matrixFrom(36, 36, func(r, c int) float64 { return float64(r*100 + c) })
	crop := m.CenterCrop(16, 32)
	if crop.Rows != 16 || crop.Cols != 32 {
		t.Fatalf("Expected 16x32 crop, got %dx%d", crop.Rows, crop.Cols)
	}
	if crop.At(0, 0) != m.At(10, 2) {
		t.Errorf("Expected crop to start at (10,2), got %v", crop.At(0, 0))
	}
}

func TestRidgeValleyStructure(t *testing.T) {
	block := matrixFrom(4, 8, func(r, c int) float64 {
		if c%2 == 0 {
			return 0
		}
		return 100
	})
	rv, err := RidgeValleyStructure(block)
	if err != nil {
		t.Fatal(err)
	}
	for i, ridge := range rv.Ridge {
		if ridge != (i%2 == 0) {
			t.Errorf("Expected column %d ridge=%v, got %v", i, i%2 == 0, ridge)
		}
	}
	if math.Abs(rv.Trend[0]-(200.0/42+50-200.0/42*4.5)) > 1e-6 {
		t.Errorf("Unexpected trend start %v", rv.Trend[0])
	}
}

func TestDFTMagnitude(t *testing.T) {
	mag := DFTMagnitude([]float64{1, 1, 1, 1})
	if math.Abs(mag[0]-4) > 1e-12 {
		t.Errorf("Expected DC 4, got %v", mag[0])
	}
	for i := 1; i < 4; i++ {
		if mag[i] > 1e-12 {
			t.Errorf("Expected zero at %d, got %v", i, mag[i])
		}
	}
}

func TestGabor(t *testing.T) {
	k := GaborKernel(5, 0, 0.1, 2)
	if len(k) != 5 || len(k[0]) != 5 {
		t.Fatalf("Expected 5x5 kernel, got %dx%d", len(k), len(k[0]))
	}
	if real(k[2][2]) != 1 || imag(k[2][2]) != 0 {
		t.Errorf("Expected unit centre tap, got %v", k[2][2])
	}
	if GaborEnergy(NewMatrix(4, 4), k) != 0 {
		t.Error("Expected zero energy for a block smaller than the kernel")
	}

	stripes := matrixFrom(16, 16, func(r, c int) float64 { return 50 * math.Cos(2*math.Pi*0.1*float64(c)) })
	flat := matrixFrom(16, 16, func(r, c int) float64 { return 0 })
	if GaborEnergy(stripes, k) <= GaborEnergy(flat, k) {
		t.Error("Expected periodic block to respond more than a flat one")
	}
}

func TestSegment(t *testing.T) {
	img := matrixFrom(64, 64, func(r, c int) float64 {
		if c < 32 {
			return 128 + 100*math.Sin(float64(c)*math.Pi/4)
		}
		return 128
	})
	seg := Segment(img, 32, 0.1)
	if !seg.Mask.At(10, 10) || seg.Mask.At(10, 40) {
		t.Error("Expected striped half as foreground and flat half as background")
	}
	if len(seg.Index) != 32*64 {
		t.Errorf("Expected %d foreground indices, got %d", 32*64, len(seg.Index))
	}
	if seg.Index[0] != 1 {
		t.Errorf("Expected first index 1, got %d", seg.Index[0])
	}

	flat := Segment(matrixFrom(32, 32, func(r, c int) float64 { return 9 }), 32, 0.1)
	if flat.Mask.Count() != 0 {
		t.Error("Expected empty mask for uniform image")
	}
}

func TestOtsuAndBinarize(t *testing.T) {
	g := NewGray(2, 4)
	copy(g.Pix, []uint8{50, 50, 50, 50, 200, 200, 200, 200})
	th := OtsuThreshold(g)
	bin := Binarize(g, th)
	if bin.Pix[0] != 0 || bin.Pix[7] != 255 {
		t.Errorf("Expected split between levels with threshold %d, got %v", th, bin.Pix)
	}
}

func TestFillHolesAndLargestRegion(t *testing.T) {
	g := NewGray(7, 7)
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	// 5x5 black square with a white centre and a lone black pixel.
	for r := 1; r <= 5; r++ {
		for c := 1; c <= 4; c++ {
			g.Pix[r*7+c] = 0
		}
	}
	g.Pix[3*7+2] = 255
	g.Pix[0*7+6] = 0

	filled := FillHoles(g)
	if filled.At(3, 2) != 0 {
		t.Error("Expected enclosed hole to be filled")
	}

	kept := KeepLargestBlackRegion(filled)
	if kept.At(0, 6) != 255 {
		t.Error("Expected small region to be removed")
	}
	if kept.At(1, 1) != 0 {
		t.Error("Expected largest region to stay black")
	}
}

func TestGaussianBlur_Constant(t *testing.T) {
	g := NewGray(10, 10)
	for i := range g.Pix {
		g.Pix[i] = 77
	}
	out := GaussianBlur(g, 41)
	for _, p := range out.Pix {
		if p != 77 {
			t.Fatalf("Expected constant image to stay constant, got %d", p)
		}
	}
}

func TestMeanStdDev(t *testing.T) {
	mean, std := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 || math.Abs(std-2) > 1e-12 {
		t.Errorf("Expected mean 5 and population std 2, got %v and %v", mean, std)
	}
	if m, s := MeanStdDev(nil); m != 0 || s != 0 {
		t.Error("Expected zeros for empty input")
	}
}
