// Package measures computes the native quality measures of a fingerprint
// image. Each module is a pure function of one image (and, for the minutiae
// module, an externally extracted minutiae list) that produces a set of named
// doubles and the time it took.
package measures

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
)

// Set maps measure identifiers to native values.
type Set map[string]float64

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Module is a computed quality measure module.
type Module interface {
	// ID is the stable module identifier, e.g. "NFIQ2_OCL".
	ID() string
	// Features returns a copy of the computed measures.
	Features() Set
	// Speed is the elapsed time spent computing the features, measured on
	// the monotonic clock.
	Speed() time.Duration
}

type module struct {
	id       string
	features Set
	speed    time.Duration
}

func (m *module) ID() string           { return m.id }
func (m *module) Features() Set        { return m.features.Clone() }
func (m *module) Speed() time.Duration { return m.speed }

// compute checks the resolution gate, times fn and tags any failure with the
// module identifier. The returned module carries its speed on every path,
// including failures and panics inside fn.
func compute(id string, img *fingerprint.Image, fn func() (Set, error)) (m module, err error) {
	m.id = id
	start := time.Now()
	defer func() {
		m.speed = time.Since(start)
	}()

	if err := fingerprint.RequireResolution(img, id); err != nil {
		return m, err
	}

	defer func() {
		if r := recover(); r != nil {
			m.features = nil
			err = apperrors.NewFeatureCalculationError(id, fmt.Sprintf("panic: %v", r), nil)
		}
	}()

	set, err := fn()
	if err != nil {
		return m, tagModule(id, err)
	}
	m.features = set
	return m, nil
}

func tagModule(id string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Module == "" {
			return appErr.WithModule(id)
		}
		return appErr
	}
	return apperrors.NewFeatureCalculationError(id, err.Error(), err)
}
