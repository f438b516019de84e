package observability

import (
	"context"

	"go.uber.org/zap"
)

// Analysis lifecycle event types published by the orchestrator.
const (
	EventAnalysisStarted   = "analysis.started"
	EventAnalysisCompleted = "analysis.completed"
	EventFacetCompleted    = "facet.completed"
	EventFacetFailed       = "facet.failed"
)

// EventBus implements the domain EventPublisher interface on top of the
// structured logger.
type EventBus struct {
	logger *zap.Logger
}

// NewEventBus creates a new event bus.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if e.logger == nil {
		return
	}

	fields := make([]zap.Field, 0, len(data)+2)
	if analysisID := GetAnalysisID(ctx); analysisID != "" {
		fields = append(fields, zap.String("analysis_id", analysisID))
	}
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}

	e.logger.Info(eventType, fields...)
}
