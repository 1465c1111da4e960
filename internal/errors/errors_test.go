package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"feature", NewFeatureCalculationError("NFIQ2_OCL", "bad block", nil), ErrorTypeFeatureCalculation, http.StatusUnprocessableEntity},
		{"image size", NewInvalidImageSizeError("too small"), ErrorTypeInvalidImageSize, http.StatusUnprocessableEntity},
		{"not loaded", NewModelNotLoadedError("no model"), ErrorTypeModelNotLoaded, http.StatusServiceUnavailable},
		{"corrupt", NewModelCorruptError("hash mismatch", nil), ErrorTypeModelCorrupt, http.StatusInternalServerError},
		{"identifier", NewUnrecognizedIdentifierError("Foo"), ErrorTypeUnrecognizedIdentifier, http.StatusBadRequest},
		{"score", NewInvalidScoreError(101), ErrorTypeInvalidScore, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, tt.err.Type)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, tt.err.StatusCode)
			}
		})
	}
}

func TestAppError_ModuleContext(t *testing.T) {
	err := NewFeatureCalculationError("NFIQ2_FDA", "odd block height", nil)
	if !strings.Contains(err.Error(), "NFIQ2_FDA") {
		t.Errorf("Expected module name in message, got %q", err.Error())
	}

	tagged := NewProcessingError("failed", nil).WithModule("NFIQ2_LCS")
	if tagged.Module != "NFIQ2_LCS" {
		t.Errorf("Expected module NFIQ2_LCS, got %s", tagged.Module)
	}
}

func TestIsType_Wrapped(t *testing.T) {
	base := NewModelNotLoadedError("no model")
	wrapped := fmt.Errorf("score: %w", base)

	if !IsType(wrapped, ErrorTypeModelNotLoaded) {
		t.Error("Expected wrapped error to match model_not_loaded")
	}
	if IsType(wrapped, ErrorTypeModelCorrupt) {
		t.Error("Expected not-loaded to be distinct from corrupt")
	}
	if GetStatusCode(wrapped) != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", GetStatusCode(wrapped))
	}
	if GetStatusCode(fmt.Errorf("plain")) != http.StatusInternalServerError {
		t.Error("Expected 500 for non-AppError")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("io failure")
	err := NewNetworkError("fetch failed", cause)
	if err.Unwrap() != cause {
		t.Error("Expected Unwrap to return cause")
	}
	if !strings.Contains(err.Error(), "caused by: io failure") {
		t.Errorf("Expected cause in message, got %q", err.Error())
	}
}
