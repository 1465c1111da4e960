package model

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/logger"
)

// Bounds of a unified score.
const (
	MinUnifiedScore = 0
	MaxUnifiedScore = 100
)

// UnifiedScore is the overall quality of an image, 0 (worst) to 100 (best).
// The only way to obtain a non-zero score is NewUnifiedScore.
type UnifiedScore struct {
	value int
}

// NewUnifiedScore rejects values outside 0..100.
func NewUnifiedScore(v int) (UnifiedScore, error) {
	if v < MinUnifiedScore || v > MaxUnifiedScore {
		return UnifiedScore{}, apperrors.NewInvalidScoreError(v)
	}
	return UnifiedScore{value: v}, nil
}

// Int returns the score as a plain integer.
func (s UnifiedScore) Int() int { return s.value }

func (s UnifiedScore) String() string { return strconv.Itoa(s.value) }

type loaded struct {
	ensemble *Ensemble
	info     Info
	hash     string
}

// Evaluator scores merged measure sets with the loaded ensemble. It is safe
// for concurrent use; Load swaps the ensemble atomically.
type Evaluator struct {
	current atomic.Pointer[loaded]
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Load reads and verifies the parameter file at path.
func (ev *Evaluator) Load(path, expectedHash string) error {
	return ev.load(Info{Name: "custom", Path: path, Hash: expectedHash})
}

// LoadInfo reads the model information file and loads the model it names.
func (ev *Evaluator) LoadInfo(infoPath string) error {
	info, err := LoadInfo(infoPath)
	if err != nil {
		return err
	}
	return ev.load(*info)
}

func (ev *Evaluator) load(info Info) error {
	ens, hash, err := Load(info.Path, info.Hash)
	if err != nil {
		return err
	}
	ev.Use(ens, info, hash)
	return nil
}

// Use installs an already validated ensemble.
func (ev *Evaluator) Use(ens *Ensemble, info Info, hash string) {
	ev.current.Store(&loaded{ensemble: ens, info: info, hash: hash})
	logger.WithFields(logrus.Fields{
		"model":    info.Name,
		"version":  info.Version,
		"hash":     hash,
		"trees":    len(ens.Roots),
		"features": len(ens.Features),
	}).Info("Model loaded")
}

// Loaded reports whether a model is installed.
func (ev *Evaluator) Loaded() bool {
	return ev.current.Load() != nil
}

// Info returns the information of the installed model.
func (ev *Evaluator) Info() (Info, error) {
	cur := ev.current.Load()
	if cur == nil {
		return Info{}, apperrors.NewModelNotLoadedError("no model loaded")
	}
	return cur.info, nil
}

// Hash returns the digest of the installed parameter file.
func (ev *Evaluator) Hash() (string, error) {
	cur := ev.current.Load()
	if cur == nil {
		return "", apperrors.NewModelNotLoadedError("no model loaded")
	}
	return cur.hash, nil
}

// Features lists the identifiers the installed model needs.
func (ev *Evaluator) Features() ([]string, error) {
	cur := ev.current.Load()
	if cur == nil {
		return nil, apperrors.NewModelNotLoadedError("no model loaded")
	}
	return append([]string(nil), cur.ensemble.Features...), nil
}

// Evaluate returns the unified score for a merged measure set. Every feature
// the model was trained on must be present.
func (ev *Evaluator) Evaluate(features map[string]float64) (UnifiedScore, error) {
	cur := ev.current.Load()
	if cur == nil {
		return UnifiedScore{}, apperrors.NewModelNotLoadedError("no model loaded")
	}
	ens := cur.ensemble

	x := make([]float64, len(ens.Features))
	for i, id := range ens.Features {
		v, ok := features[id]
		if !ok {
			e := apperrors.NewValidationError("missing quality measure", nil)
			e.Details = id
			return UnifiedScore{}, e
		}
		x[i] = v
	}

	p := ens.predict(x)
	score, err := NewUnifiedScore(int(p*100 + 0.5))
	if err != nil {
		return UnifiedScore{}, fmt.Errorf("evaluate %s: %w", cur.info.Name, err)
	}
	return score, nil
}
