package measures

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/minutiae"
)

// ridgeImage draws sinusoidal ridges with the given period (pixels) and
// direction of the ridge normal (radians).
func ridgeImage(t *testing.T, size int, period, angle float64, ppi uint16) *fingerprint.Image {
	t.Helper()
	pix := make([]byte, size*size)
	ca, sa := math.Cos(angle), math.Sin(angle)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := 128 + 100*math.Cos(2*math.Pi*(float64(x)*ca+float64(y)*sa)/period)
			pix[y*size+x] = byte(v)
		}
	}
	img, err := fingerprint.New(pix, size, size, ppi, 0)
	if err != nil {
		t.Fatalf("Failed to build image: %v", err)
	}
	return img
}

func uniformImage(t *testing.T, size int, value byte) *fingerprint.Image {
	t.Helper()
	pix := make([]byte, size*size)
	for i := range pix {
		pix[i] = value
	}
	img, err := fingerprint.New(pix, size, size, fingerprint.Resolution500PPI, 0)
	if err != nil {
		t.Fatalf("Failed to build image: %v", err)
	}
	return img
}

func TestModules_RejectNon500PPI(t *testing.T) {
	img := ridgeImage(t, 64, 9, 0, 1000)

	constructors := map[string]func() error{
		ContrastModuleID:   func() error { _, err := NewContrast(img); return err },
		LCSModuleID:        func() error { _, err := NewLocalClarity(img); return err },
		OCLModuleID:        func() error { _, err := NewOrientationCertainty(img); return err },
		RVUModuleID:        func() error { _, err := NewRidgeValleyUniformity(img); return err },
		OFModuleID:         func() error { _, err := NewOrientationFlow(img); return err },
		FDAModuleID:        func() error { _, err := NewFrequencyDomainAnalysis(img); return err },
		QualityMapModuleID: func() error { _, err := NewQualityMap(img); return err },
		MinutiaeModuleID: func() error {
			_, err := NewMinutiaeQuality(img, minutiae.Result{Extracted: true})
			return err
		},
	}

	for id, fn := range constructors {
		t.Run(id, func(t *testing.T) {
			err := fn()
			if !apperrors.IsType(err, apperrors.ErrorTypeFeatureCalculation) {
				t.Fatalf("Expected feature calculation error, got %v", err)
			}
			if appErr := err.(*apperrors.AppError); appErr.Module != id {
				t.Errorf("Expected module %s, got %s", id, appErr.Module)
			}
		})
	}
}

func TestIdentifiers(t *testing.T) {
	ids := Identifiers()
	if len(ids) != 69 {
		t.Errorf("Expected 69 identifiers, got %d", len(ids))
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("Duplicate identifier %s", id)
		}
		seen[id] = true
	}
	if ids[0] != MMB || ids[len(ids)-1] != MinutiaeOCLQuality {
		t.Errorf("Unexpected ordering: first %s, last %s", ids[0], ids[len(ids)-1])
	}
	if FeatureIDs("NFIQ2_Unknown") != nil {
		t.Error("Expected nil for unknown module")
	}
}

func TestContrast(t *testing.T) {
	c, err := NewContrast(uniformImage(t, 100, 90))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f := c.Features()
	if math.Abs(f[Mu]-90) > 1e-9 || math.Abs(f[MMB]-90) > 1e-9 {
		t.Errorf("Expected Mu and MMB of 90, got %v and %v", f[Mu], f[MMB])
	}
	if c.Sigma() != 0 {
		t.Errorf("Expected zero sigma, got %v", c.Sigma())
	}
	if c.ID() != ContrastModuleID {
		t.Errorf("Expected %s, got %s", ContrastModuleID, c.ID())
	}
}

func TestOrientationCertainty(t *testing.T) {
	m, err := NewOrientationCertainty(ridgeImage(t, 128, 8, 0, 500))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f := m.Features()
	if math.Abs(f[OCLPrefix+"9"]-1) > 1e-12 {
		t.Errorf("Expected every block in the top bin, got %v", f)
	}

	flat, err := NewOrientationCertainty(uniformImage(t, 128, 50))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for k, v := range flat.Features() {
		if v != 0 {
			t.Errorf("Expected %s to be 0 for a uniform image, got %v", k, v)
		}
	}
}

// ringImage draws concentric ridges around the image centre so neighbouring
// blocks have different orientations.
func ringImage(t *testing.T, size int, period float64) *fingerprint.Image {
	t.Helper()
	pix := make([]byte, size*size)
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := math.Hypot(float64(x)-c, float64(y)-c)
			pix[y*size+x] = byte(128 + 100*math.Cos(2*math.Pi*r/period))
		}
	}
	img, err := fingerprint.New(pix, size, size, fingerprint.Resolution500PPI, 0)
	if err != nil {
		t.Fatalf("Failed to build image: %v", err)
	}
	return img
}

func foregroundBlocks(t *testing.T, img *fingerprint.Image) int {
	t.Helper()
	n := 0
	_, _, _, err := orientedWalk(img, func(b orientedBlock) error {
		if b.Foreground {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected walk error: %v", err)
	}
	return n
}

func TestHistogramModules_BinSum(t *testing.T) {
	lcs := func(img *fingerprint.Image) (Module, error) { m, err := NewLocalClarity(img); return asModule(m, err) }
	rvu := func(img *fingerprint.Image) (Module, error) { m, err := NewRidgeValleyUniformity(img); return asModule(m, err) }
	of := func(img *fingerprint.Image) (Module, error) { m, err := NewOrientationFlow(img); return asModule(m, err) }
	fda := func(img *fingerprint.Image) (Module, error) { m, err := NewFrequencyDomainAnalysis(img); return asModule(m, err) }

	type build struct {
		prefix string
		fn     func(*fingerprint.Image) (Module, error)
	}
	tests := []struct {
		name      string
		img       *fingerprint.Image
		mods      []build
		wantEmpty bool
	}{
		{"ridges", ridgeImage(t, 200, 9, 0.4, 500), []build{{LCSPrefix, lcs}, {RVUPrefix, rvu}, {FDAPrefix, fda}}, false},
		{"rings", ringImage(t, 256, 9), []build{{OFPrefix, of}}, false},
		{"uniform", uniformImage(t, 200, 120), []build{{LCSPrefix, lcs}, {RVUPrefix, rvu}, {OFPrefix, of}, {FDAPrefix, fda}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if blocks := foregroundBlocks(t, tt.img); !tt.wantEmpty && blocks == 0 {
				t.Fatal("Expected foreground blocks in the fixture, got none")
			}
			for _, mod := range tt.mods {
				m, err := mod.fn(tt.img)
				if err != nil {
					t.Fatalf("%s: unexpected error: %v", mod.prefix, err)
				}
				f := m.Features()
				var sum float64
				for _, id := range HistogramIDs(mod.prefix)[:histogramBins] {
					v, ok := f[id]
					if !ok {
						t.Fatalf("Missing %s", id)
					}
					sum += v
				}
				if tt.wantEmpty {
					if sum != 0 {
						t.Errorf("%s: expected empty histogram, got sum %v", mod.prefix, sum)
					}
					continue
				}
				if math.Abs(sum-1) > 1e-9 {
					t.Errorf("%s: expected bins to sum to 1, got %v", mod.prefix, sum)
				}
			}
		})
	}
}

func TestHistogram_Bin(t *testing.T) {
	tests := []struct {
		value    float64
		expected int
	}{
		{-1, 0},
		{0, 0},
		{0.5, 1},
		{0.70, 1},
		{0.7000001, 2},
		{0.87, 8},
		{0.9, 9},
		{math.Inf(1), 9},
	}
	for _, tt := range tests {
		if got := lcsHistogram.Bin(tt.value); got != tt.expected {
			t.Errorf("Value %v: expected bin %d, got %d", tt.value, tt.expected, got)
		}
	}
}

func TestHistogram_Encode(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		bins   map[int]float64
		mean   float64
		std    float64
	}{
		{"empty", nil, map[int]float64{}, 0, 0},
		{"on breakpoints", []float64{0.70, 0.77}, map[int]float64{1: 0.5, 3: 0.5}, 0.735, 0.035},
		{"reversed", []float64{0.77, 0.70}, map[int]float64{1: 0.5, 3: 0.5}, 0.735, 0.035},
		{"single", []float64{0.95}, map[int]float64{9: 1}, 0.95, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := lcsHistogram.Encode(tt.values)
			if len(f) != histogramBins+2 {
				t.Fatalf("Expected %d measures, got %d", histogramBins+2, len(f))
			}
			for i, id := range HistogramIDs(LCSPrefix)[:histogramBins] {
				if math.Abs(f[id]-tt.bins[i]) > 1e-12 {
					t.Errorf("Expected %s=%v, got %v", id, tt.bins[i], f[id])
				}
			}
			if math.Abs(f[LCSPrefix+meanSuffix]-tt.mean) > 1e-12 {
				t.Errorf("Expected mean %v, got %v", tt.mean, f[LCSPrefix+meanSuffix])
			}
			if math.Abs(f[LCSPrefix+stdDevSuffix]-tt.std) > 1e-12 {
				t.Errorf("Expected std %v, got %v", tt.std, f[LCSPrefix+stdDevSuffix])
			}
		})
	}

	a := rvuHistogram.Encode([]float64{0.3, 1.1, 25, 0.9, 1.1})
	b := rvuHistogram.Encode([]float64{1.1, 25, 1.1, 0.3, 0.9})
	for id, v := range a {
		if math.Abs(b[id]-v) > 1e-12 {
			t.Errorf("Expected %s independent of input order, got %v and %v", id, v, b[id])
		}
	}
}

func TestMerge(t *testing.T) {
	a := &module{id: "A", features: Set{"a1": 1, "a2": 2}}
	b := &module{id: "B", features: Set{"b1": 3}}
	c := &module{id: "C", features: Set{"c1": 4, "c2": 5}}
	dup := &module{id: "D", features: Set{"a2": 9}}

	tests := []struct {
		name    string
		modules []Module
		wantErr bool
	}{
		{"in order", []Module{a, b, c}, false},
		{"reversed", []Module{c, b, a}, false},
		{"rotated", []Module{b, c, a}, false},
		{"duplicate identifier", []Module{a, dup, b}, true},
		{"duplicate first", []Module{dup, c, a}, true},
	}

	want := Set{"a1": 1, "a2": 2, "b1": 3, "c1": 4, "c2": 5}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.modules...)
			if tt.wantErr {
				if !apperrors.IsType(err, apperrors.ErrorTypeFeatureCalculation) {
					t.Errorf("Expected feature_calculation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("Expected %d measures, got %d", len(want), len(got))
			}
			for k, v := range want {
				if got[k] != v {
					t.Errorf("Expected %s=%v, got %v", k, v, got[k])
				}
			}
		})
	}
}

func TestCompute_SpeedOnEveryPath(t *testing.T) {
	img := uniformImage(t, 64, 100)
	wait := func() { time.Sleep(2 * time.Millisecond) }

	tests := []struct {
		name    string
		fn      func() (Set, error)
		wantErr bool
	}{
		{"success", func() (Set, error) { wait(); return Set{"x": 1}, nil }, false},
		{"failure", func() (Set, error) { wait(); return nil, errors.New("boom") }, true},
		{"panic", func() (Set, error) { wait(); panic("index out of range") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := compute("TEST_Module", img, tt.fn)
			if tt.wantErr {
				if !apperrors.IsType(err, apperrors.ErrorTypeFeatureCalculation) {
					t.Errorf("Expected feature_calculation error, got %v", err)
				}
				var appErr *apperrors.AppError
				if errors.As(err, &appErr) && appErr.Module != "TEST_Module" {
					t.Errorf("Expected module TEST_Module, got %q", appErr.Module)
				}
			} else if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if m.Speed() < 2*time.Millisecond {
				t.Errorf("Expected speed of at least 2ms, got %s", m.Speed())
			}
		})
	}
}

func TestQualityMap_Uniform(t *testing.T) {
	q, err := NewQualityMap(uniformImage(t, 128, 200))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f := q.Features()
	if f[ROIAreaMean] != 255 || f[CoherenceSum] != 0 || f[CoherenceRel] != 0 {
		t.Errorf("Expected empty region of interest, got %v", f)
	}
	if q.OrientationMap().At(0, 0) != 255 {
		t.Error("Expected background blocks to be white in the orientation map")
	}
}

func TestMinutiaeQuality(t *testing.T) {
	img := ridgeImage(t, 256, 9, 0, 500)

	missing, err := NewMinutiaeQuality(img, minutiae.Result{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f := missing.Features()
	if f[MinutiaeCount] != 0 || f[MinutiaeMuQuality] != -1 || f[MinutiaeOCLQuality] != -1 {
		t.Errorf("Expected placeholder values for failed extraction, got %v", f)
	}
	if missing.Extracted() {
		t.Error("Expected Extracted to be false")
	}

	ms := []minutiae.Minutia{{X: 128, Y: 128}, {X: 20, Y: 20}, {X: 250, Y: 250}}
	found, err := NewMinutiaeQuality(img, minutiae.Result{Minutiae: ms, Extracted: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f = found.Features()
	if f[MinutiaeCount] != 3 {
		t.Errorf("Expected 3 minutiae, got %v", f[MinutiaeCount])
	}
	// Centre of mass (132, 132): the rectangle spans 32..232.
	if f[MinutiaeCountCOM] != 1 {
		t.Errorf("Expected 1 minutia near the centre of mass, got %v", f[MinutiaeCountCOM])
	}
	if f[MinutiaeOCLQuality] != 1 {
		t.Errorf("Expected every minutia on clear ridges, got %v", f[MinutiaeOCLQuality])
	}

	_, err = NewMinutiaeQuality(img, minutiae.Result{Minutiae: []minutiae.Minutia{{X: 999, Y: 0}}, Extracted: true})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestOrchestrator_Deterministic(t *testing.T) {
	img := ridgeImage(t, 240, 9, 0.7, 500)
	mins := minutiae.Result{Minutiae: []minutiae.Minutia{{X: 100, Y: 100}}, Extracted: true}

	seq := NewOrchestrator(SequentialOptions())
	defer seq.Close()
	par := NewOrchestrator(DefaultOptions().WithMaxWorkers(3))
	defer par.Close()

	a, err := seq.Compute(context.Background(), img, mins)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := par.Compute(context.Background(), img, mins)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, id := range Identifiers() {
		va, ok := a.Features[id]
		if !ok {
			t.Fatalf("Missing identifier %s", id)
		}
		if vb := b.Features[id]; va != vb {
			t.Errorf("Expected identical %s, got %v and %v", id, va, vb)
		}
	}
	if len(a.Features) != len(Identifiers()) {
		t.Errorf("Expected %d features, got %d", len(Identifiers()), len(a.Features))
	}
	if len(a.OrderedSpeeds()) != len(ModuleIDs()) {
		t.Errorf("Expected a speed per module, got %d", len(a.OrderedSpeeds()))
	}
}

func TestOrchestrator_Feedback(t *testing.T) {
	o := NewOrchestrator(SequentialOptions())
	res, err := o.Compute(context.Background(), uniformImage(t, 200, 255), minutiae.Result{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := map[string]bool{
		FeedbackUniformImage:                    false,
		FeedbackEmptyImageOrContrastTooLow:      false,
		FeedbackFingerprintImageWithMinutiae:    false,
		FeedbackSufficientFingerprintForeground: false,
	}
	if len(res.Feedback) != len(want) {
		t.Fatalf("Expected %d feedback entries, got %d", len(want), len(res.Feedback))
	}
	for _, fb := range res.Feedback {
		if fb.Passed != want[fb.ID] {
			t.Errorf("Expected %s passed=%v, got %v (value %v)", fb.ID, want[fb.ID], fb.Passed, fb.Value)
		}
	}
	if res.MinutiaeExtracted {
		t.Error("Expected MinutiaeExtracted to be false")
	}
}

func TestOrchestrator_Cancelled(t *testing.T) {
	o := NewOrchestrator(SequentialOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Compute(ctx, uniformImage(t, 200, 100), minutiae.Result{})
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestOrchestrator_CropFrame(t *testing.T) {
	o := NewOrchestrator(SequentialOptions().WithCropFrame())
	_, err := o.Compute(context.Background(), uniformImage(t, 150, 255), minutiae.Result{})
	if !apperrors.IsType(err, apperrors.ErrorTypeInvalidImageSize) {
		t.Errorf("Expected invalid image size error, got %v", err)
	}
}

func TestOrchestrator_CropFrameTranslatesMinutiae(t *testing.T) {
	const size, border = 300, 30
	pix := make([]byte, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x < border || y < border || x >= size-border || y >= size-border {
				pix[y*size+x] = 255
				continue
			}
			pix[y*size+x] = byte(128 + 100*math.Cos(2*math.Pi*float64(x)/9))
		}
	}
	img, err := fingerprint.New(pix, size, size, fingerprint.Resolution500PPI, 0)
	if err != nil {
		t.Fatal(err)
	}

	ms := minutiae.Result{
		Minutiae:  []minutiae.Minutia{{X: 100, Y: 100}, {X: 5, Y: 5}},
		Extracted: true,
	}
	res, err := NewOrchestrator(SequentialOptions().WithCropFrame()).Compute(context.Background(), img, ms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if x, y := res.Image.Origin(); x != border-1 || y != border-1 {
		t.Errorf("Expected crop origin (%d,%d), got (%d,%d)", border-1, border-1, x, y)
	}
	if res.Features[MinutiaeCount] != 1 {
		t.Errorf("Expected the framed minutia to be dropped, got count %v", res.Features[MinutiaeCount])
	}
	if !res.MinutiaeExtracted {
		t.Error("Expected extraction flag to survive cropping")
	}
}

func TestMinutiaeQuality_NoneFound(t *testing.T) {
	img := ridgeImage(t, 128, 9, 0, 500)
	q, err := NewMinutiaeQuality(img, minutiae.Result{Minutiae: []minutiae.Minutia{}, Extracted: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f := q.Features()
	if f[MinutiaeCount] != 0 || f[MinutiaeCountCOM] != 0 {
		t.Errorf("Expected zero counts, got %v and %v", f[MinutiaeCount], f[MinutiaeCountCOM])
	}
	if f[MinutiaeMuQuality] != -1 || f[MinutiaeOCLQuality] != -1 {
		t.Errorf("Expected -1 for both minutiae qualities, got %v and %v", f[MinutiaeMuQuality], f[MinutiaeOCLQuality])
	}
	if !q.Extracted() {
		t.Error("Expected Extracted to be true")
	}
}

func TestMinutiaeQuality_ImageSmallerThanBlock(t *testing.T) {
	pix := make([]byte, 20*20)
	for i := range pix {
		pix[i] = byte(60 + 8*(i%20))
	}
	img, err := fingerprint.New(pix, 20, 20, fingerprint.Resolution500PPI, 0)
	if err != nil {
		t.Fatal(err)
	}
	ms := minutiae.Result{Minutiae: []minutiae.Minutia{{X: 5, Y: 5}, {X: 19, Y: 19}}, Extracted: true}

	q, err := NewMinutiaeQuality(img, ms)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f := q.Features()
	if f[MinutiaeCount] != 2 {
		t.Errorf("Expected 2 minutiae, got %v", f[MinutiaeCount])
	}
	if v := f[MinutiaeOCLQuality]; v < 0 || v > 1 {
		t.Errorf("Expected OCL quality in [0,1], got %v", v)
	}

	for _, opts := range []Options{DefaultOptions(), SequentialOptions()} {
		o := NewOrchestrator(opts)
		_, err := o.Compute(context.Background(), img, ms)
		o.Close()
		if !apperrors.IsType(err, apperrors.ErrorTypeInvalidImageSize) {
			t.Errorf("Expected invalid image size error, got %v", err)
		}
	}
}

func TestFrequencyDomainAnalysis_GaborOptional(t *testing.T) {
	img := ridgeImage(t, 200, 9, 0.4, 500)

	plain, err := NewFrequencyDomainAnalysis(img)
	if err != nil {
		t.Fatal(err)
	}
	if plain.GaborEnergy() != 0 {
		t.Errorf("Expected no Gabor energy by default, got %v", plain.GaborEnergy())
	}

	withGabor, err := NewFrequencyDomainAnalysisWithGabor(img)
	if err != nil {
		t.Fatal(err)
	}
	if withGabor.GaborEnergy() <= 0 {
		t.Errorf("Expected positive Gabor energy, got %v", withGabor.GaborEnergy())
	}
	a, b := plain.Features(), withGabor.Features()
	for id, v := range a {
		if b[id] != v {
			t.Errorf("Expected %s unchanged by the diagnostic, got %v and %v", id, v, b[id])
		}
	}
}
