package factory

import (
	"context"
	"fmt"
	"strings"

	"github.com/anime-shed/fingerprint-quality-go/internal/config"
	"github.com/anime-shed/fingerprint-quality-go/internal/minutiae"
	"github.com/anime-shed/fingerprint-quality-go/internal/storage"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// StorageTypeFor picks the backend that serves location.
func StorageTypeFor(location string) StorageType {
	switch {
	case strings.HasPrefix(location, "file://"):
		return LocalStorage
	case strings.Contains(location, ".blob.core.windows.net"):
		return AzureStorage
	default:
		return HTTPStorage
	}
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.Fetcher, error)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.Fetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPFetcher(f.cfg.ImageFetchTimeout, f.cfg.MaxRequestBodySize), nil
	case AzureStorage:
		if f.cfg.AzureAccountName == "" {
			return nil, fmt.Errorf("azure storage is not configured")
		}
		fetcher, err := storage.NewAzureFetcher(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, f.cfg.MaxRequestBodySize)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case LocalStorage:
		if f.cfg.LocalImageRoot == "" {
			return nil, fmt.Errorf("local storage is not configured")
		}
		return storage.NewFileFetcher(f.cfg.LocalImageRoot, f.cfg.MaxRequestBodySize), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// RoutingFetcher sends each location to the backend that serves it. Backends
// that are not configured are absent.
type RoutingFetcher struct {
	fetchers map[StorageType]storage.Fetcher
}

// NewRoutingFetcher creates every backend the configuration allows.
func NewRoutingFetcher(f StorageFactory) (*RoutingFetcher, []error) {
	r := &RoutingFetcher{fetchers: make(map[StorageType]storage.Fetcher)}
	var skipped []error
	for _, st := range []StorageType{HTTPStorage, AzureStorage, LocalStorage} {
		fetcher, err := f.CreateStorage(st)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", st, err))
			continue
		}
		r.fetchers[st] = fetcher
	}
	return r, skipped
}

// Fetcher returns the backend for location.
func (r *RoutingFetcher) Fetcher(location string) (storage.Fetcher, error) {
	st := StorageTypeFor(location)
	fetcher, ok := r.fetchers[st]
	if !ok {
		return nil, fmt.Errorf("%s storage is not available", st)
	}
	return fetcher, nil
}

// ExtractorFor returns a StaticExtractor over points supplied by the caller,
// or a NoExtractor when points is nil.
func ExtractorFor(points []minutiae.Minutia) minutiae.Extractor {
	if points == nil {
		return minutiae.NoExtractor{}
	}
	return minutiae.StaticExtractor{Minutiae: points}
}

// Fetch downloads location through its backend.
func (r *RoutingFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	fetcher, err := r.Fetcher(location)
	if err != nil {
		return nil, err
	}
	return fetcher.Fetch(ctx, location)
}
