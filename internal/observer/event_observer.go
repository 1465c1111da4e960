package observer

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/sirupsen/logrus"
)

// ScoringEvent represents a step of scoring one image
type ScoringEvent struct {
	EventType      EventType                `json:"event_type"`
	Timestamp      time.Time                `json:"timestamp"`
	Location       string                   `json:"location"`
	ProcessingTime time.Duration            `json:"processing_time"`
	Success        bool                     `json:"success"`
	ErrorMessage   string                   `json:"error_message,omitempty"`
	Score          int                      `json:"score,omitempty"`
	ModuleSpeeds   map[string]time.Duration `json:"module_speeds,omitempty"`
	Metadata       map[string]interface{}   `json:"metadata,omitempty"`
}

// EventType represents the type of scoring event
type EventType string

const (
	// ScoringStarted when scoring begins
	ScoringStarted EventType = "scoring_started"
	// ScoringCompleted when scoring finishes successfully
	ScoringCompleted EventType = "scoring_completed"
	// ScoringFailed when scoring fails
	ScoringFailed EventType = "scoring_failed"
	// ImageFetched when image is successfully fetched and decoded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ScoringEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ScoringEvent)
}

// LoggingObserver logs scoring events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles scoring events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ScoringEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"location":        event.Location,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	if event.EventType == ScoringCompleted {
		fields["score"] = event.Score
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case ScoringStarted:
		o.logger.WithFields(fields).Info("Fingerprint scoring started")
	case ScoringCompleted:
		o.logger.WithFields(fields).Info("Fingerprint scoring completed")
	case ScoringFailed:
		o.logger.WithFields(fields).Error("Fingerprint scoring failed")
	case ImageFetched:
		o.logger.WithFields(fields).Debug("Image fetched successfully")
	case ImageFetchFailed:
		o.logger.WithFields(fields).Error("Image fetch failed")
	default:
		o.logger.WithFields(fields).Info("Scoring event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// moduleTiming accumulates the speed of one quality measure module
type moduleTiming struct {
	calls int64
	total time.Duration
}

// MetricsObserver collects metrics from scoring events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalScorings       int64
	successfulScorings  int64
	failedScorings      int64
	failedFetches       int64
	totalProcessingTime time.Duration
	scoreSum            int64
	// module id -> *moduleTiming, in first seen order
	modules *linkedhashmap.Map
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{modules: linkedhashmap.New()}
}

// OnEvent handles scoring events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ScoringEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ScoringStarted:
		o.totalScorings++
	case ScoringCompleted:
		o.successfulScorings++
		o.totalProcessingTime += event.ProcessingTime
		o.scoreSum += int64(event.Score)
		for id, d := range event.ModuleSpeeds {
			o.recordModule(id, d)
		}
	case ScoringFailed:
		o.failedScorings++
	case ImageFetchFailed:
		o.failedFetches++
	}
}

func (o *MetricsObserver) recordModule(id string, d time.Duration) {
	v, ok := o.modules.Get(id)
	if !ok {
		v = &moduleTiming{}
		o.modules.Put(id, v)
	}
	timing := v.(*moduleTiming)
	timing.calls++
	timing.total += d
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// ModuleMetrics is the average speed of one module
type ModuleMetrics struct {
	ModuleID string        `json:"module_id"`
	Calls    int64         `json:"calls"`
	Average  time.Duration `json:"avg_speed"`
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	avgScore := 0.0
	if o.successfulScorings > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulScorings)
		avgScore = float64(o.scoreSum) / float64(o.successfulScorings)
	}

	return map[string]interface{}{
		"total_scorings":        o.totalScorings,
		"successful_scorings":   o.successfulScorings,
		"failed_scorings":       o.failedScorings,
		"failed_fetches":        o.failedFetches,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
		"avg_score":             avgScore,
		"modules":               o.moduleMetrics(),
	}
}

func (o *MetricsObserver) moduleMetrics() []ModuleMetrics {
	out := make([]ModuleMetrics, 0, o.modules.Size())
	it := o.modules.Iterator()
	for it.Next() {
		timing := it.Value().(*moduleTiming)
		out = append(out, ModuleMetrics{
			ModuleID: it.Key().(string),
			Calls:    timing.calls,
			Average:  timing.total / time.Duration(timing.calls),
		})
	}
	return out
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	wg        sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ScoringEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	for _, observer := range observers {
		p.wg.Add(1)
		go func(obs Observer) {
			defer p.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification sent so far has been handled.
func (p *EventPublisher) Wait() {
	p.wg.Wait()
}
