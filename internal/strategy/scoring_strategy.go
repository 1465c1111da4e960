package strategy

import (
	"fmt"

	"github.com/anime-shed/fingerprint-quality-go/internal/measures"
	"github.com/anime-shed/fingerprint-quality-go/internal/model"
	"github.com/anime-shed/fingerprint-quality-go/internal/quality"
)

// Mode names a scoring strategy
type Mode string

const (
	// UnifiedMode evaluates the model and reports everything
	UnifiedMode Mode = "unified"
	// NativeMode reports the native quality measures only
	NativeMode Mode = "native"
	// QualityBlocksMode reports 0..100 quality blocks only
	QualityBlocksMode Mode = "quality_blocks"
)

// Outcome is what a strategy derives from the computed measures.
type Outcome struct {
	Score         *model.UnifiedScore
	Features      measures.Set
	QualityBlocks map[string]int
}

// ScoringStrategy turns computed measures into an outcome
type ScoringStrategy interface {
	Apply(res *measures.Result) (*Outcome, error)
	GetStrategyName() string
}

// UnifiedScoreStrategy evaluates the loaded model
type UnifiedScoreStrategy struct {
	evaluator *model.Evaluator
}

// NewUnifiedScoreStrategy creates a new unified score strategy
func NewUnifiedScoreStrategy(evaluator *model.Evaluator) ScoringStrategy {
	return &UnifiedScoreStrategy{evaluator: evaluator}
}

// Apply evaluates the model over the merged measures
func (s *UnifiedScoreStrategy) Apply(res *measures.Result) (*Outcome, error) {
	score, err := s.evaluator.Evaluate(res.Features)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Score:         &score,
		Features:      res.Features,
		QualityBlocks: quality.Blocks(res.Features),
	}, nil
}

// GetStrategyName returns the strategy name
func (s *UnifiedScoreStrategy) GetStrategyName() string {
	return string(UnifiedMode)
}

// NativeStrategy reports the measures without a model
type NativeStrategy struct{}

// NewNativeStrategy creates a new native measure strategy
func NewNativeStrategy() ScoringStrategy {
	return &NativeStrategy{}
}

// Apply returns the merged measures
func (s *NativeStrategy) Apply(res *measures.Result) (*Outcome, error) {
	return &Outcome{Features: res.Features}, nil
}

// GetStrategyName returns the strategy name
func (s *NativeStrategy) GetStrategyName() string {
	return string(NativeMode)
}

// QualityBlockStrategy maps measures onto 0..100 without a model
type QualityBlockStrategy struct{}

// NewQualityBlockStrategy creates a new quality block strategy
func NewQualityBlockStrategy() ScoringStrategy {
	return &QualityBlockStrategy{}
}

// Apply maps every mappable measure
func (s *QualityBlockStrategy) Apply(res *measures.Result) (*Outcome, error) {
	return &Outcome{QualityBlocks: quality.Blocks(res.Features)}, nil
}

// GetStrategyName returns the strategy name
func (s *QualityBlockStrategy) GetStrategyName() string {
	return string(QualityBlocksMode)
}

// ForMode returns the strategy for mode. The empty mode is UnifiedMode.
func ForMode(mode Mode, evaluator *model.Evaluator) (ScoringStrategy, error) {
	switch mode {
	case "", UnifiedMode:
		return NewUnifiedScoreStrategy(evaluator), nil
	case NativeMode:
		return NewNativeStrategy(), nil
	case QualityBlocksMode:
		return NewQualityBlockStrategy(), nil
	default:
		return nil, fmt.Errorf("unsupported scoring mode: %s", mode)
	}
}
