package validation

import (
	"net/url"
	"strings"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
)

// URLValidator handles image location validation
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a validator accepting http and https from any host
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// AllowScheme adds scheme to the accepted list
func (v *URLValidator) AllowScheme(scheme string) *URLValidator {
	if !v.isSchemeAllowed(scheme) {
		v.allowedSchemes = append(v.allowedSchemes, scheme)
	}
	return v
}

// ValidateImageURL checks that location can be fetched. file:// locations
// name a path below the local image root and are not host checked.
func (v *URLValidator) ValidateImageURL(location string) error {
	if strings.TrimSpace(location) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(location)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}
	if parsedURL.Scheme == "file" {
		if strings.TrimPrefix(location, "file://") == "" {
			return apperrors.NewValidationError("file location must name a file", nil)
		}
		return nil
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}
	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed returns true if no host restrictions are set
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
