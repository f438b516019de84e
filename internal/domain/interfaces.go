package domain

import "context"

// CompletionService represents a backend that can execute completion calls.
type CompletionService interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the service identifier.
	Name() string
}

// PromptRegistry resolves facet names to prompt templates.
type PromptRegistry interface {
	// Resolve returns the template registered for a facet.
	Resolve(facet string) (PromptTemplate, error)

	// Facets returns all registered facet names.
	Facets() []string
}

// EventPublisher publishes analysis lifecycle events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

// CostCalculator estimates cost based on token usage.
type CostCalculator interface {
	// Calculate returns the total cost for a given model and usage.
	Calculate(ctx context.Context, model string, usage Usage) (float64, error)
}

// PricingRegistry maintains pricing information for models.
type PricingRegistry interface {
	// GetPricing returns pricing config for a model.
	GetPricing(ctx context.Context, model string) (PricingConfig, error)

	// RegisterPricing adds pricing for a model.
	RegisterPricing(ctx context.Context, model string, config PricingConfig) error
}
