package repository

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anime-shed/fingerprint-quality-go/internal/storage"
)

type stubFetcher struct {
	data []byte
	err  error
}

func (s stubFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	return s.data, s.err
}

func TestFetcherImageRepository(t *testing.T) {
	repo := NewFetcherImageRepository(stubFetcher{data: []byte{1, 2, 3, 4}}, nil)
	img, format, err := repo.FetchImage(context.Background(), "x", storage.DecodeOptions{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if format != storage.FormatRaw || img.At(1, 1) != 4 {
		t.Errorf("Expected raw 2x2 image, got %s with last pixel %d", format, img.At(1, 1))
	}

	failing := NewFetcherImageRepository(stubFetcher{err: errors.New("boom")}, nil)
	if _, _, err := failing.FetchImage(context.Background(), "x", storage.DecodeOptions{}); err == nil {
		t.Error("Expected fetch error to propagate")
	}

	if !errors.Is(repo.ValidateLocation(""), ErrInvalidLocation) {
		t.Error("Expected empty location to be rejected")
	}
	strict := NewFetcherImageRepository(nil, func(string) error { return errors.New("no") })
	if !errors.Is(strict.ValidateLocation("http://a"), ErrInvalidLocation) {
		t.Error("Expected validator error to be wrapped")
	}
}

func TestSQLiteScoreRepository(t *testing.T) {
	repo, err := NewSQLiteScoreRepository(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED=0") {
			t.Skip("sqlite3 requires cgo")
		}
		t.Fatalf("Unexpected error: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	first := &ScoreRecord{Location: "a.wsq", Format: "wsq", Width: 400, Height: 500, Score: 61,
		ModelHash: "abc", MinutiaeExtracted: true, Features: map[string]float64{"Mu": 120.5}}
	second := &ScoreRecord{Location: "a.wsq", Score: 40}
	for _, rec := range []*ScoreRecord{first, second} {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Unexpected save error: %v", err)
		}
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("Expected increasing ids, got %d and %d", first.ID, second.ID)
	}

	got, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Unexpected get error: %v", err)
	}
	if got.Score != 61 || got.Features["Mu"] != 120.5 || !got.MinutiaeExtracted {
		t.Errorf("Expected stored record back, got %+v", got)
	}

	history, err := repo.History(ctx, "a.wsq", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].ID != second.ID {
		t.Errorf("Expected newest first, got %d records", len(history))
	}

	if _, err := repo.Get(ctx, 9999); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}
