package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureFetcher downloads blobs addressed as
// https://<account>.blob.core.windows.net/<container>/<blob>.
type AzureFetcher struct {
	client  *azblob.Client
	maxSize int64
}

func NewAzureFetcher(accountName, accountKey string, maxSize int64) (*AzureFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}
	return &AzureFetcher{client: client, maxSize: maxSize}, nil
}

// ParseBlobURL splits a blob URL into container and blob names. The legacy
// form /<container>?blob=<name> is also accepted.
func ParseBlobURL(blobURL string) (container, blob string, err error) {
	parsed, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}
	path := strings.TrimPrefix(parsed.Path, "/")
	if name := parsed.Query().Get("blob"); name != "" {
		return path, name, nil
	}
	container, blob, ok := strings.Cut(path, "/")
	if !ok || container == "" || blob == "" {
		return "", "", fmt.Errorf("invalid blob URL: missing container or blob name")
	}
	return container, blob, nil
}

func (s *AzureFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	container, blob, err := ParseBlobURL(location)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	body := resp.Body
	defer body.Close()

	return readLimited(body, s.maxSize)
}
