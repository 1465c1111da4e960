package measures

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/logger"
	"github.com/anime-shed/fingerprint-quality-go/internal/minutiae"
)

// Result is the outcome of running every module over one image.
type Result struct {
	// Image is the image the modules saw, after optional cropping.
	Image    *fingerprint.Image
	Features Set
	// Speeds holds the computation time of each module by module ID.
	Speeds            map[string]time.Duration
	Feedback          []Feedback
	MinutiaeExtracted bool
	// GaborEnergy is a diagnostic of the frequency domain module.
	GaborEnergy float64
	Elapsed     time.Duration
}

// Orchestrator runs the eight quality measure modules and merges their
// output.
type Orchestrator struct {
	opts Options
	pool *WorkerPool
}

// NewOrchestrator creates an orchestrator. With UseWorkerPool set, modules
// run concurrently on a shared pool that lives until Close.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{opts: opts}
	if opts.UseWorkerPool {
		o.pool = NewWorkerPool(opts.MaxWorkers)
		o.pool.Start()
	}
	return o
}

// Close stops the worker pool.
func (o *Orchestrator) Close() {
	if o.pool != nil {
		o.pool.Close()
	}
}

// Options returns the options the orchestrator was created with.
func (o *Orchestrator) Options() Options { return o.opts }

func asModule[M Module](m M, err error) (Module, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Compute runs every module over img. Either all measures are produced or an
// error is returned.
func (o *Orchestrator) Compute(ctx context.Context, img *fingerprint.Image, mins minutiae.Result) (*Result, error) {
	start := time.Now()
	if err := fingerprint.RequireResolution(img, "orchestrator"); err != nil {
		return nil, err
	}
	if err := fingerprint.RequireMinimumSize(img); err != nil {
		return nil, err
	}
	if o.opts.CropFrame {
		cropped, err := img.CropNearWhiteFrame()
		if err != nil {
			return nil, err
		}
		// minutiae are given in the coordinates of the uncropped image
		x0, y0 := img.Origin()
		x1, y1 := cropped.Origin()
		mins = minutiae.Translate(mins, x0-x1, y0-y1, cropped.Width(), cropped.Height())
		img = cropped
	}

	builders := []func() (Module, error){
		func() (Module, error) { m, err := NewContrast(img); return asModule(m, err) },
		func() (Module, error) { m, err := NewLocalClarity(img); return asModule(m, err) },
		func() (Module, error) { m, err := NewOrientationCertainty(img); return asModule(m, err) },
		func() (Module, error) { m, err := NewRidgeValleyUniformity(img); return asModule(m, err) },
		func() (Module, error) { m, err := NewOrientationFlow(img); return asModule(m, err) },
		func() (Module, error) {
			if o.opts.GaborEnergy {
				m, err := NewFrequencyDomainAnalysisWithGabor(img)
				return asModule(m, err)
			}
			m, err := NewFrequencyDomainAnalysis(img)
			return asModule(m, err)
		},
		func() (Module, error) { m, err := NewQualityMap(img); return asModule(m, err) },
		func() (Module, error) { m, err := NewMinutiaeQuality(img, mins); return asModule(m, err) },
	}

	slots := make([]Module, len(builders))
	errs := make([]error, len(builders))
	run := func(i int) {
		// a panicking module must not take the pool goroutine down
		defer func() {
			if r := recover(); r != nil {
				slots[i] = nil
				errs[i] = apperrors.NewFeatureCalculationError(moduleIDs[i], fmt.Sprintf("panic: %v", r), nil)
			}
		}()
		if err := ctx.Err(); err != nil {
			errs[i] = apperrors.NewTimeoutError("quality measure computation cancelled", err).WithModule(moduleIDs[i])
			return
		}
		slots[i], errs[i] = builders[i]()
	}

	if o.pool != nil {
		var wg sync.WaitGroup
		for i := range builders {
			i := i // per-iteration copy; go.mod targets go 1.21 loop semantics
			wg.Add(1)
			o.pool.Submit(func() {
				defer wg.Done()
				run(i)
			})
		}
		wg.Wait()
	} else {
		for i := range builders {
			run(i)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	features, err := Merge(slots...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Image:    img,
		Features: features,
		Speeds:   make(map[string]time.Duration, len(slots)),
	}
	for _, m := range slots {
		res.Speeds[m.ID()] = m.Speed()
	}

	contrast := slots[0].(*Contrast)
	fda := slots[5].(*FrequencyDomainAnalysis)
	qmap := slots[6].(*QualityMap)
	mq := slots[7].(*MinutiaeQuality)
	res.Feedback = actionableFeedback(contrast, features, qmap.ROI().Pixels)
	res.MinutiaeExtracted = mq.Extracted()
	res.GaborEnergy = fda.GaborEnergy()
	res.Elapsed = time.Since(start)

	logger.WithFields(logrus.Fields{
		"width":    img.Width(),
		"height":   img.Height(),
		"features": len(features),
		"elapsed":  res.Elapsed.String(),
	}).Debug("Native quality measures computed")
	return res, nil
}

// Merge combines module outputs into one set. The result does not depend on
// argument order; an identifier produced by two modules is an error.
func Merge(modules ...Module) (Set, error) {
	ordered := append([]Module(nil), modules...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID() < ordered[j].ID() })

	out := make(Set)
	owner := make(map[string]string)
	for _, m := range ordered {
		for k, v := range m.Features() {
			if prev, ok := owner[k]; ok {
				return nil, apperrors.NewFeatureCalculationError(m.ID(),
					fmt.Sprintf("measure %q already produced by %s", k, prev), nil)
			}
			owner[k] = m.ID()
			out[k] = v
		}
	}
	return out, nil
}

// OrderedSpeeds returns the per module computation time in merge order.
func (r *Result) OrderedSpeeds() []ModuleSpeed {
	out := make([]ModuleSpeed, 0, len(r.Speeds))
	for _, id := range moduleIDs {
		if d, ok := r.Speeds[id]; ok {
			out = append(out, ModuleSpeed{ModuleID: id, Speed: d})
		}
	}
	return out
}

// ModuleSpeed pairs a module with its computation time.
type ModuleSpeed struct {
	ModuleID string
	Speed    time.Duration
}
