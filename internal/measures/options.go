package measures

// Options controls how the orchestrator runs the modules.
type Options struct {
	// Crop the near-white frame before computing.
	CropFrame bool
	// Compute the Gabor ridge energy diagnostic in the FDA module.
	GaborEnergy bool

	// Performance options
	UseWorkerPool bool
	MaxWorkers    int
}

// DefaultOptions runs the modules in parallel on one worker per CPU.
func DefaultOptions() Options {
	return Options{
		CropFrame:     false,
		UseWorkerPool: true,
		MaxWorkers:    0, // Use default CPU count
	}
}

// SequentialOptions runs the modules one after another on the calling
// goroutine.
func SequentialOptions() Options {
	opts := DefaultOptions()
	opts.UseWorkerPool = false
	return opts
}

// WithCropFrame enables near-white frame cropping.
func (opts Options) WithCropFrame() Options {
	opts.CropFrame = true
	return opts
}

// WithMaxWorkers bounds the worker pool size.
func (opts Options) WithMaxWorkers(n int) Options {
	opts.MaxWorkers = n
	return opts
}

// WithGaborEnergy enables the Gabor ridge energy diagnostic.
func (opts Options) WithGaborEnergy() Options {
	opts.GaborEnergy = true
	return opts
}
