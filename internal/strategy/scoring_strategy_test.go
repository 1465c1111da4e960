package strategy

import (
	"testing"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/measures"
	"github.com/anime-shed/fingerprint-quality-go/internal/model"
)

func constantEvaluator(value float64) *model.Evaluator {
	ev := model.NewEvaluator()
	ev.Use(&model.Ensemble{
		Features: []string{measures.Mu},
		Nodes:    []model.Node{{Feature: model.Leaf, Value: value}},
		Roots:    []int32{0},
	}, model.Info{Name: "constant"}, "hash")
	return ev
}

func TestForMode(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
		wantErr  bool
	}{
		{"", "unified", false},
		{UnifiedMode, "unified", false},
		{NativeMode, "native", false},
		{QualityBlocksMode, "quality_blocks", false},
		{"fast", "", true},
	}
	for _, tt := range tests {
		s, err := ForMode(tt.mode, model.NewEvaluator())
		if (err != nil) != tt.wantErr {
			t.Errorf("Mode %q: expected error=%v, got %v", tt.mode, tt.wantErr, err)
			continue
		}
		if err == nil && s.GetStrategyName() != tt.expected {
			t.Errorf("Mode %q: expected %s, got %s", tt.mode, tt.expected, s.GetStrategyName())
		}
	}
}

func TestStrategies(t *testing.T) {
	res := &measures.Result{Features: measures.Set{measures.Mu: 255, measures.MMB: 0}}

	out, err := NewUnifiedScoreStrategy(constantEvaluator(0.734)).Apply(res)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Score == nil || out.Score.Int() != 73 {
		t.Errorf("Expected score 73, got %v", out.Score)
	}
	if out.QualityBlocks[measures.Mu] != 100 {
		t.Errorf("Expected Mu block 100, got %d", out.QualityBlocks[measures.Mu])
	}

	if _, err := NewUnifiedScoreStrategy(model.NewEvaluator()).Apply(res); !apperrors.IsType(err, apperrors.ErrorTypeModelNotLoaded) {
		t.Errorf("Expected model_not_loaded, got %v", err)
	}

	native, _ := NewNativeStrategy().Apply(res)
	if native.Score != nil || len(native.Features) != 2 || native.QualityBlocks != nil {
		t.Errorf("Expected features only, got %+v", native)
	}

	blocks, _ := NewQualityBlockStrategy().Apply(res)
	if blocks.Score != nil || blocks.Features != nil || len(blocks.QualityBlocks) != 2 {
		t.Errorf("Expected quality blocks only, got %+v", blocks)
	}
}
