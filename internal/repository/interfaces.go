package repository

import (
	"context"
	"time"

	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/storage"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves and decodes the image at location
	FetchImage(ctx context.Context, location string, opts storage.DecodeOptions) (*fingerprint.Image, string, error)

	// ValidateLocation checks that the location can be fetched by this repository
	ValidateLocation(location string) error
}

// ScoreRepository stores scoring results.
type ScoreRepository interface {
	Save(ctx context.Context, record *ScoreRecord) error
	Get(ctx context.Context, id int64) (*ScoreRecord, error)
	History(ctx context.Context, location string, limit int) ([]*ScoreRecord, error)
	Close() error
}

// ScoreRecord is one stored scoring of an image.
type ScoreRecord struct {
	ID                int64              `json:"id"`
	Location          string             `json:"location"`
	Format            string             `json:"format"`
	Width             int                `json:"width"`
	Height            int                `json:"height"`
	Score             int                `json:"score"`
	ModelHash         string             `json:"model_hash"`
	MinutiaeExtracted bool               `json:"minutiae_extracted"`
	ProcessingTimeSec float64            `json:"processing_time_sec"`
	Features          map[string]float64 `json:"features"`
	CreatedAt         time.Time          `json:"created_at"`
}
