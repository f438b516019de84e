package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docmind/docmind/internal/domain"
)

func TestStandardCostCalculator_Calculate(t *testing.T) {
	calculator := domain.NewStandardCostCalculator(domain.NewDefaultPricingRegistry())

	t.Run("should price the efficient model per 1K tokens", func(t *testing.T) {
		cost, err := calculator.Calculate(context.Background(), string(domain.ModelEfficient), domain.Usage{
			PromptTokens:     1000,
			CompletionTokens: 1000,
		})

		require.NoError(t, err)
		require.InDelta(t, 0.00015+0.0006, cost, 1e-9)
	})

	t.Run("should price the standard model per 1K tokens", func(t *testing.T) {
		cost, err := calculator.Calculate(context.Background(), string(domain.ModelStandard), domain.Usage{
			PromptTokens:     2000,
			CompletionTokens: 500,
		})

		require.NoError(t, err)
		require.InDelta(t, 2*0.0025+0.5*0.01, cost, 1e-9)
	})

	t.Run("should cost zero for an unknown model", func(t *testing.T) {
		cost, err := calculator.Calculate(context.Background(), "unknown-model", domain.Usage{
			PromptTokens:     1000,
			CompletionTokens: 1000,
		})

		require.NoError(t, err)
		require.Zero(t, cost)
	})

	t.Run("should reject an empty model", func(t *testing.T) {
		_, err := calculator.Calculate(context.Background(), "", domain.Usage{})

		require.Error(t, err)
	})
}

func TestInMemoryPricingRegistry(t *testing.T) {
	t.Run("should register and retrieve pricing", func(t *testing.T) {
		registry := domain.NewInMemoryPricingRegistry()
		ctx := context.Background()

		require.NoError(t, registry.RegisterPricing(ctx, "custom-model", domain.PricingConfig{
			InputCostPer1K:  0.001,
			OutputCostPer1K: 0.002,
		}))

		pricing, err := registry.GetPricing(ctx, "custom-model")
		require.NoError(t, err)
		require.Equal(t, 0.001, pricing.InputCostPer1K)
		require.Equal(t, 0.002, pricing.OutputCostPer1K)
	})

	t.Run("should fail for a missing model", func(t *testing.T) {
		registry := domain.NewInMemoryPricingRegistry()

		_, err := registry.GetPricing(context.Background(), "missing")

		require.Error(t, err)
	})

	t.Run("should reject an empty model name", func(t *testing.T) {
		registry := domain.NewInMemoryPricingRegistry()

		err := registry.RegisterPricing(context.Background(), "", domain.PricingConfig{})

		require.Error(t, err)
	})
}
