package repository

import (
	"context"
	"fmt"

	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/storage"
)

// FetcherImageRepository implements ImageRepository on top of a storage fetcher
type FetcherImageRepository struct {
	fetcher  storage.Fetcher
	validate func(string) error
}

// NewFetcherImageRepository creates an image repository. validate may be nil,
// in which case only empty locations are rejected.
func NewFetcherImageRepository(fetcher storage.Fetcher, validate func(string) error) *FetcherImageRepository {
	return &FetcherImageRepository{
		fetcher:  fetcher,
		validate: validate,
	}
}

// FetchImage downloads and decodes a fingerprint image
func (r *FetcherImageRepository) FetchImage(ctx context.Context, location string, opts storage.DecodeOptions) (*fingerprint.Image, string, error) {
	data, err := r.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", location, err)
	}
	return storage.Decode(data, opts)
}

// ValidateLocation validates the image location
func (r *FetcherImageRepository) ValidateLocation(location string) error {
	if location == "" {
		return ErrInvalidLocation
	}
	if r.validate != nil {
		if err := r.validate(location); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLocation, err)
		}
	}
	return nil
}
