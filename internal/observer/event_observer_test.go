package observer

import (
	"context"
	"testing"
	"time"
)

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event ScoringEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string { return "panicking" }

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, ScoringEvent{EventType: ScoringStarted})
	m.OnEvent(ctx, ScoringEvent{EventType: ScoringStarted})
	m.OnEvent(ctx, ScoringEvent{
		EventType:      ScoringCompleted,
		ProcessingTime: 40 * time.Millisecond,
		Score:          60,
		ModuleSpeeds:   map[string]time.Duration{"NFIQ2_Contrast": 2 * time.Millisecond},
	})
	m.OnEvent(ctx, ScoringEvent{
		EventType:      ScoringCompleted,
		ProcessingTime: 20 * time.Millisecond,
		Score:          40,
		ModuleSpeeds:   map[string]time.Duration{"NFIQ2_Contrast": 4 * time.Millisecond},
	})
	m.OnEvent(ctx, ScoringEvent{EventType: ImageFetchFailed})

	metrics := m.GetMetrics()
	if metrics["total_scorings"].(int64) != 2 {
		t.Errorf("Expected 2 scorings, got %v", metrics["total_scorings"])
	}
	if metrics["avg_processing_time"].(time.Duration) != 30*time.Millisecond {
		t.Errorf("Expected 30ms average, got %v", metrics["avg_processing_time"])
	}
	if metrics["avg_score"].(float64) != 50 {
		t.Errorf("Expected average score 50, got %v", metrics["avg_score"])
	}
	if metrics["failed_fetches"].(int64) != 1 {
		t.Errorf("Expected 1 failed fetch, got %v", metrics["failed_fetches"])
	}

	modules := metrics["modules"].([]ModuleMetrics)
	if len(modules) != 1 || modules[0].Calls != 2 || modules[0].Average != 3*time.Millisecond {
		t.Errorf("Expected contrast averaged over 2 calls at 3ms, got %+v", modules)
	}
}

func TestEventPublisher(t *testing.T) {
	p := NewEventPublisher()
	m := NewMetricsObserver()
	p.Subscribe(m)
	p.Subscribe(panickingObserver{})

	p.NotifyObservers(context.Background(), ScoringEvent{EventType: ScoringStarted})
	p.Wait()

	if got := m.GetMetrics()["total_scorings"].(int64); got != 1 {
		t.Errorf("Expected 1 scoring after notify, got %d", got)
	}

	p.Unsubscribe(m)
	p.NotifyObservers(context.Background(), ScoringEvent{EventType: ScoringStarted})
	p.Wait()
	if got := m.GetMetrics()["total_scorings"].(int64); got != 1 {
		t.Errorf("Expected unsubscribed observer to stay at 1, got %d", got)
	}
}
