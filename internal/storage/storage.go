// Package storage fetches encoded fingerprint images and decodes them.
package storage

import "context"

// Fetcher retrieves the encoded bytes of an image.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

var (
	_ Fetcher = (*HTTPFetcher)(nil)
	_ Fetcher = (*AzureFetcher)(nil)
	_ Fetcher = (*FileFetcher)(nil)
)
