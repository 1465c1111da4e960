package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileFetcher reads images below a root directory.
type FileFetcher struct {
	root    string
	maxSize int64
}

func NewFileFetcher(root string, maxSize int64) *FileFetcher {
	return &FileFetcher{root: filepath.Clean(root), maxSize: maxSize}
}

func (f *FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(location, "file://")
	path := filepath.Join(f.root, filepath.Clean("/"+name))

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()
	return readLimited(file, f.maxSize)
}
