package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Pricing per 1K tokens for the logical models this core targets.
const (
	standardInputCostPer1K  = 0.0025
	standardOutputCostPer1K = 0.01

	efficientInputCostPer1K  = 0.00015
	efficientOutputCostPer1K = 0.0006
)

// InMemoryPricingRegistry stores pricing configs in memory.
type InMemoryPricingRegistry struct {
	mu      sync.RWMutex
	pricing map[string]PricingConfig
}

// NewInMemoryPricingRegistry creates an empty in-memory pricing registry.
func NewInMemoryPricingRegistry() *InMemoryPricingRegistry {
	return &InMemoryPricingRegistry{
		mu:      sync.RWMutex{},
		pricing: make(map[string]PricingConfig),
	}
}

// NewDefaultPricingRegistry creates a registry pre-seeded with pricing for the
// known logical models.
func NewDefaultPricingRegistry() *InMemoryPricingRegistry {
	registry := NewInMemoryPricingRegistry()
	registry.pricing[string(ModelStandard)] = PricingConfig{
		InputCostPer1K:  standardInputCostPer1K,
		OutputCostPer1K: standardOutputCostPer1K,
	}
	registry.pricing[string(ModelEfficient)] = PricingConfig{
		InputCostPer1K:  efficientInputCostPer1K,
		OutputCostPer1K: efficientOutputCostPer1K,
	}
	return registry
}

// GetPricing retrieves pricing for a model.
func (r *InMemoryPricingRegistry) GetPricing(
	_ context.Context,
	model string,
) (PricingConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	config, exists := r.pricing[model]
	if !exists {
		return PricingConfig{}, fmt.Errorf("pricing not found for model: %s", model)
	}

	return config, nil
}

// RegisterPricing adds pricing for a model.
func (r *InMemoryPricingRegistry) RegisterPricing(
	_ context.Context,
	model string,
	config PricingConfig,
) error {
	if model == "" {
		return errors.New("model cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pricing[model] = config
	return nil
}
