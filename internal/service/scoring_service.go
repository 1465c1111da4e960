package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/factory"
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/logger"
	"github.com/anime-shed/fingerprint-quality-go/internal/measures"
	"github.com/anime-shed/fingerprint-quality-go/internal/minutiae"
	"github.com/anime-shed/fingerprint-quality-go/internal/model"
	"github.com/anime-shed/fingerprint-quality-go/internal/observer"
	"github.com/anime-shed/fingerprint-quality-go/internal/quality"
	"github.com/anime-shed/fingerprint-quality-go/internal/repository"
	"github.com/anime-shed/fingerprint-quality-go/internal/storage"
	"github.com/anime-shed/fingerprint-quality-go/internal/strategy"
	"github.com/anime-shed/fingerprint-quality-go/pkg/models"
	"github.com/anime-shed/fingerprint-quality-go/pkg/validation"
)

// ScoringService defines the operations offered over HTTP
type ScoringService interface {
	// Score fetches or decodes an image and computes its quality
	Score(ctx context.Context, req *models.ScoreRequest) (*models.ScoreResponse, error)

	// QualityBlock maps one native measure onto 0..100
	QualityBlock(identifier string, value float64) (*models.QualityBlockResponse, error)

	// Measures lists the measure vocabulary
	Measures() []models.MeasureDescriptor

	// ModelInfo describes the loaded model
	ModelInfo() (*models.ModelInfoResponse, error)

	// Record returns a stored score
	Record(ctx context.Context, id int64) (*repository.ScoreRecord, error)

	// Metrics returns the collected scoring metrics
	Metrics() map[string]interface{}
}

// Dependencies of the scoring service. Scores may be nil when results are
// not persisted.
type Dependencies struct {
	Images       repository.ImageRepository
	Scores       repository.ScoreRepository
	Orchestrator *measures.Orchestrator
	Evaluator    *model.Evaluator
	Validator    *validation.ScoreRequestValidator
	Publisher    *observer.EventPublisher
	Metrics      *observer.MetricsObserver
}

type scoringService struct {
	deps Dependencies
}

// NewScoringService creates a new scoring service
func NewScoringService(deps Dependencies) ScoringService {
	return &scoringService{deps: deps}
}

func (s *scoringService) Score(ctx context.Context, req *models.ScoreRequest) (*models.ScoreResponse, error) {
	start := time.Now()
	if err := s.deps.Validator.Validate(req); err != nil {
		return nil, err
	}
	strat, err := strategy.ForMode(strategy.Mode(req.Mode), s.deps.Evaluator)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid scoring mode", err)
	}

	location := req.URL
	s.publish(ctx, observer.ScoringEvent{EventType: observer.ScoringStarted, Location: location})

	img, format, err := s.loadImage(ctx, req)
	if err != nil {
		s.publish(ctx, observer.ScoringEvent{
			EventType:    observer.ImageFetchFailed,
			Location:     location,
			ErrorMessage: err.Error(),
		})
		return nil, s.fail(ctx, location, start, err)
	}
	s.publish(ctx, observer.ScoringEvent{
		EventType: observer.ImageFetched,
		Location:  location,
		Success:   true,
		Metadata:  map[string]interface{}{"format": format, "width": img.Width(), "height": img.Height()},
	})

	mins, err := factory.ExtractorFor(toMinutiae(req.Minutiae)).Extract(ctx, img)
	if err != nil {
		return nil, s.fail(ctx, location, start, err)
	}

	res, err := s.deps.Orchestrator.Compute(ctx, img, mins)
	if err != nil {
		return nil, s.fail(ctx, location, start, err)
	}
	out, err := strat.Apply(res)
	if err != nil {
		return nil, s.fail(ctx, location, start, err)
	}

	resp := buildResponse(location, format, img, strat.GetStrategyName(), res, out)
	if out.Score != nil {
		resp.ModelHash, _ = s.deps.Evaluator.Hash()
	}
	resp.ProcessingTimeSec = time.Since(start).Seconds()

	if s.deps.Scores != nil && (req.Store == nil || *req.Store) {
		rec := &repository.ScoreRecord{
			Location:          location,
			Format:            format,
			Width:             img.Width(),
			Height:            img.Height(),
			Score:             -1,
			ModelHash:         resp.ModelHash,
			MinutiaeExtracted: res.MinutiaeExtracted,
			ProcessingTimeSec: resp.ProcessingTimeSec,
			Features:          res.Features,
		}
		if out.Score != nil {
			rec.Score = out.Score.Int()
		}
		if err := s.deps.Scores.Save(ctx, rec); err != nil {
			// the score itself is still valid
			logger.WithError(err).WithField("location", location).Warn("Failed to store score record")
		} else {
			resp.RecordID = rec.ID
		}
	}

	event := observer.ScoringEvent{
		EventType:      observer.ScoringCompleted,
		Location:       location,
		ProcessingTime: time.Since(start),
		Success:        true,
		ModuleSpeeds:   res.Speeds,
		Metadata:       map[string]interface{}{"mode": resp.Mode},
	}
	if resp.Score != nil {
		event.Score = *resp.Score
	}
	s.publish(ctx, event)
	return resp, nil
}

func (s *scoringService) loadImage(ctx context.Context, req *models.ScoreRequest) (*fingerprint.Image, string, error) {
	opts := storage.DecodeOptions{
		PPI:        uint16(req.PPI),
		FingerCode: uint8(req.FingerCode),
		Width:      req.Width,
		Height:     req.Height,
	}

	if req.URL == "" {
		data, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return nil, "", apperrors.NewValidationError("image is not valid base64", err)
		}
		return storage.Decode(data, opts)
	}

	if err := s.deps.Images.ValidateLocation(req.URL); err != nil {
		return nil, "", apperrors.NewValidationError("invalid image location", err)
	}
	img, format, err := s.deps.Images.FetchImage(ctx, req.URL, opts)
	if err == nil {
		return img, format, nil
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return nil, "", err
	case errors.Is(err, context.DeadlineExceeded):
		return nil, "", apperrors.NewTimeoutError("image fetch timeout", err)
	default:
		return nil, "", apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func (s *scoringService) fail(ctx context.Context, location string, start time.Time, err error) error {
	s.publish(ctx, observer.ScoringEvent{
		EventType:      observer.ScoringFailed,
		Location:       location,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
	return err
}

func (s *scoringService) publish(ctx context.Context, event observer.ScoringEvent) {
	if s.deps.Publisher != nil {
		// observers outlive the request
		s.deps.Publisher.NotifyObservers(context.WithoutCancel(ctx), event)
	}
}

func (s *scoringService) QualityBlock(identifier string, value float64) (*models.QualityBlockResponse, error) {
	block, err := quality.BlockValue(identifier, value)
	if err != nil {
		return nil, err
	}
	return &models.QualityBlockResponse{Identifier: identifier, Value: value, Block: block}, nil
}

func (s *scoringService) Measures() []models.MeasureDescriptor {
	mappable := make(map[string]bool)
	for _, id := range quality.Identifiers() {
		mappable[id] = true
	}

	var out []models.MeasureDescriptor
	for _, moduleID := range measures.ModuleIDs() {
		for _, id := range measures.FeatureIDs(moduleID) {
			out = append(out, models.MeasureDescriptor{ID: id, ModuleID: moduleID, Mappable: mappable[id]})
		}
	}
	return out
}

func (s *scoringService) ModelInfo() (*models.ModelInfoResponse, error) {
	info, err := s.deps.Evaluator.Info()
	if err != nil {
		return nil, err
	}
	hash, _ := s.deps.Evaluator.Hash()
	features, _ := s.deps.Evaluator.Features()
	return &models.ModelInfoResponse{
		Name:        info.Name,
		Trainer:     info.Trainer,
		Description: info.Description,
		Version:     info.Version,
		Hash:        hash,
		Features:    features,
	}, nil
}

func (s *scoringService) Record(ctx context.Context, id int64) (*repository.ScoreRecord, error) {
	if s.deps.Scores == nil {
		return nil, apperrors.NewNotFoundError("score records are not stored", nil)
	}
	rec, err := s.deps.Scores.Get(ctx, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("record %d not found", id), err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read score record", err)
	}
	return rec, nil
}

func (s *scoringService) Metrics() map[string]interface{} {
	if s.deps.Metrics == nil {
		return map[string]interface{}{}
	}
	return s.deps.Metrics.GetMetrics()
}

func toMinutiae(points *[]models.Minutia) []minutiae.Minutia {
	if points == nil {
		return nil
	}
	out := make([]minutiae.Minutia, len(*points))
	for i, p := range *points {
		out[i] = minutiae.Minutia{X: p.X, Y: p.Y, Angle: p.Angle, Quality: p.Quality}
	}
	return out
}

func buildResponse(location, format string, img *fingerprint.Image, mode string, res *measures.Result, out *strategy.Outcome) *models.ScoreResponse {
	resp := &models.ScoreResponse{
		Location:          location,
		Format:            format,
		Width:             img.Width(),
		Height:            img.Height(),
		Mode:              mode,
		QualityBlocks:     out.QualityBlocks,
		MinutiaeExtracted: res.MinutiaeExtracted,
		GaborEnergy:       res.GaborEnergy,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
	if out.Score != nil {
		v := out.Score.Int()
		resp.Score = &v
	}
	if out.Features != nil {
		for _, id := range measures.Identifiers() {
			if v, ok := out.Features[id]; ok {
				resp.Measures = append(resp.Measures, models.Measure{ID: id, Value: v})
			}
		}
	}
	for _, f := range res.Feedback {
		resp.Feedback = append(resp.Feedback, models.Feedback{
			ID:        f.ID,
			Value:     f.Value,
			Threshold: f.Threshold,
			Passed:    f.Passed,
		})
	}
	for _, sp := range res.OrderedSpeeds() {
		resp.Timings = append(resp.Timings, models.ModuleTiming{
			ModuleID: sp.ModuleID,
			Millis:   float64(sp.Speed.Microseconds()) / 1000,
		})
	}
	return resp
}
