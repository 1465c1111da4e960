package validation

import (
	"fmt"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/pkg/models"
)

// RequestLimits bounds what a score request may carry
type RequestLimits struct {
	MaxMinutiae   int
	MaxFingerCode int
	MaxDimension  int
}

// DefaultRequestLimits returns the default request limits
func DefaultRequestLimits() RequestLimits {
	return RequestLimits{
		MaxMinutiae:   1000,
		MaxFingerCode: 10,
		MaxDimension:  20000,
	}
}

// ScoreRequestValidator checks the shape of score requests
type ScoreRequestValidator struct {
	urls   *URLValidator
	limits RequestLimits
}

// NewScoreRequestValidator creates a request validator
func NewScoreRequestValidator(urls *URLValidator, limits RequestLimits) *ScoreRequestValidator {
	return &ScoreRequestValidator{urls: urls, limits: limits}
}

// Validate rejects malformed requests before any image is fetched. Whether
// the image itself is usable is left to the quality engine.
func (v *ScoreRequestValidator) Validate(req *models.ScoreRequest) error {
	hasURL, hasImage := req.URL != "", req.Image != ""
	if hasURL == hasImage {
		return apperrors.NewValidationError("exactly one of url and image is required", nil)
	}
	if hasURL {
		if err := v.urls.ValidateImageURL(req.URL); err != nil {
			return err
		}
	}

	if (req.Width > 0) != (req.Height > 0) || req.Width < 0 || req.Height < 0 {
		return apperrors.NewValidationError("width and height must be given together", nil)
	}
	if req.Width > v.limits.MaxDimension || req.Height > v.limits.MaxDimension {
		return apperrors.NewValidationError(
			fmt.Sprintf("raw dimensions exceed %d pixels", v.limits.MaxDimension), nil)
	}
	if req.PPI < 0 || req.PPI > 0xFFFF {
		return apperrors.NewValidationError(fmt.Sprintf("invalid ppi %d", req.PPI), nil)
	}
	if req.FingerCode < 0 || req.FingerCode > v.limits.MaxFingerCode {
		return apperrors.NewValidationError(fmt.Sprintf("invalid finger code %d", req.FingerCode), nil)
	}

	if req.Minutiae != nil {
		ms := *req.Minutiae
		if len(ms) > v.limits.MaxMinutiae {
			return apperrors.NewValidationError(
				fmt.Sprintf("too many minutiae (%d > %d)", len(ms), v.limits.MaxMinutiae), nil)
		}
		for i, m := range ms {
			if m.X < 0 || m.Y < 0 {
				return apperrors.NewValidationError(fmt.Sprintf("minutia %d has negative coordinates", i), nil)
			}
		}
	}

	switch req.Mode {
	case "", "unified", "native", "quality_blocks":
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unsupported mode %q", req.Mode), nil)
	}
	return nil
}
