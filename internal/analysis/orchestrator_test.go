package analysis_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docmind/docmind/internal/analysis"
	"github.com/docmind/docmind/internal/domain"
	"github.com/docmind/docmind/internal/prompt"
	"github.com/docmind/docmind/internal/provider/echo"
)

const testDocument = "Quarterly revenue grew twelve percent while operating costs stayed flat, " +
	"driven by strong subscription renewals across all enterprise segments."

// mockCompletionService is a mock implementation of domain.CompletionService
// for testing.
type mockCompletionService struct {
	mu           sync.Mutex
	calls        int
	requests     []*domain.CompletionRequest
	completeFunc func(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error)
}

func (m *mockCompletionService) Complete(
	ctx context.Context,
	req *domain.CompletionRequest,
) (*domain.CompletionResponse, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return respond("{}"), nil
}

func (m *mockCompletionService) Name() string {
	return "mock"
}

func (m *mockCompletionService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockCompletionService) requestFor(facet string) *domain.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.Metadata["facet"] == facet {
			return req
		}
	}
	return nil
}

func respond(content string) *domain.CompletionResponse {
	return &domain.CompletionResponse{
		ID:      "test-id",
		Model:   "gpt-4o-mini",
		Content: content,
		Usage: domain.Usage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
	}
}

func facetContent(facet string) string {
	switch facet {
	case domain.FacetComprehensive:
		return `{
			"executiveSummary": "A strong quarter overall.",
			"keyPoints": ["revenue up", "costs flat"],
			"primaryCategory": "finance",
			"overallSentiment": "positive",
			"recommendations": ["maintain course"]
		}`
	case domain.FacetSummary:
		return "Revenue grew while costs stayed flat."
	case domain.FacetKeywords:
		return "Here is the result: ```json\n{\"primaryKeywords\": [\"revenue\"], \"secondaryKeywords\": [\"costs\"], \"keyPhrases\": []}\n```"
	case domain.FacetCategorization:
		return `{"primaryCategory": "finance", "secondaryCategories": [], "documentType": "report", "confidence": "high"}`
	case domain.FacetSentiment:
		return `{"overallSentiment": "positive", "confidence": "high", "tone": "upbeat", "emotionalIndicators": []}`
	default:
		return "{}"
	}
}

func newOrchestrator(client domain.CompletionService) *analysis.Orchestrator {
	return analysis.NewOrchestrator(client, prompt.NewRegistry(), nil, nil, analysis.Config{})
}

func TestOrchestrator_Analyze_ContentTooShort(t *testing.T) {
	client := &mockCompletionService{}
	orchestrator := newOrchestrator(client)

	t.Run("should reject empty content without any network call", func(t *testing.T) {
		composite, err := orchestrator.Analyze(context.Background(), "", domain.DefaultAnalysisOptions())

		require.ErrorIs(t, err, domain.ErrContentTooShort)
		require.Nil(t, composite)
		require.Equal(t, 0, client.callCount())
	})

	t.Run("should reject short content without any network call", func(t *testing.T) {
		composite, err := orchestrator.Analyze(context.Background(), "short", domain.DefaultAnalysisOptions())

		require.ErrorIs(t, err, domain.ErrContentTooShort)
		require.Nil(t, composite)
		require.Equal(t, 0, client.callCount())
	})
}

func TestOrchestrator_Analyze_FullSuccess(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			return respond(facetContent(req.Metadata["facet"])), nil
		},
	}
	orchestrator := newOrchestrator(client)

	composite, err := orchestrator.Analyze(context.Background(), testDocument, domain.DefaultAnalysisOptions())

	require.NoError(t, err)
	require.NotNil(t, composite)
	require.Equal(t, 5, client.callCount())
	require.Equal(t, len(testDocument), composite.DocumentLength)
	require.Equal(t, string(domain.ModelEfficient), composite.ModelUsed)

	// One result per requested facet, none failed.
	require.Len(t, composite.Results, 5)
	for _, facet := range []string{
		domain.FacetComprehensive,
		domain.FacetSummary,
		domain.FacetKeywords,
		domain.FacetCategorization,
		domain.FacetSentiment,
	} {
		result, exists := composite.Results[facet]
		require.True(t, exists, "missing facet %s", facet)
		require.False(t, result.Failed(), "facet %s unexpectedly failed", facet)
	}

	// Digest is derived from the comprehensive facet.
	require.Equal(t, "A strong quarter overall.", composite.Summary.MainFindings.ExecutiveSummary)
	require.Equal(t, []string{"revenue up", "costs flat"}, composite.Summary.MainFindings.KeyPoints)
	require.Equal(t, "finance", composite.Summary.MainFindings.PrimaryCategory)
	require.Equal(t, "positive", composite.Summary.MainFindings.OverallSentiment)
	require.Equal(t, []string{"maintain course"}, composite.Summary.Recommendations)

	// Usage aggregates across every facet call.
	require.Equal(t, 50, composite.Usage.PromptTokens)
	require.Equal(t, 100, composite.Usage.CompletionTokens)
	require.Equal(t, 150, composite.Usage.TotalTokens)

	// Narrative facet keeps its raw text.
	require.Equal(t, "Revenue grew while costs stayed flat.", composite.Results[domain.FacetSummary].Value)

	// Fenced JSON is extracted for the keywords facet.
	keywords, ok := composite.Results[domain.FacetKeywords].StructuredValue()
	require.True(t, ok)
	require.Equal(t, []any{"revenue"}, keywords["primaryKeywords"])
}

func TestOrchestrator_Analyze_ComprehensiveFailureIsIsolated(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			if req.Metadata["facet"] == domain.FacetComprehensive {
				return nil, errors.New("upstream exploded")
			}
			return respond(facetContent(req.Metadata["facet"])), nil
		},
	}
	orchestrator := newOrchestrator(client)

	composite, err := orchestrator.Analyze(context.Background(), testDocument, domain.DefaultAnalysisOptions())

	require.NoError(t, err)
	require.NotNil(t, composite)
	require.Len(t, composite.Results, 5)

	require.True(t, composite.Results[domain.FacetComprehensive].Failed())
	require.Contains(t, composite.Results[domain.FacetComprehensive].Err, "upstream exploded")
	require.False(t, composite.Results[domain.FacetSummary].Failed())
	require.False(t, composite.Results[domain.FacetKeywords].Failed())

	// Digest derivation must not blow up; it is simply empty.
	require.Empty(t, composite.Summary.MainFindings.ExecutiveSummary)
	require.Empty(t, composite.Summary.Recommendations)
}

// failingRegistry delegates to a real registry except for one broken facet.
type failingRegistry struct {
	inner  domain.PromptRegistry
	broken string
}

func (r *failingRegistry) Resolve(facet string) (domain.PromptTemplate, error) {
	if facet == r.broken {
		return domain.PromptTemplate{}, errors.New("template store unavailable")
	}
	return r.inner.Resolve(facet)
}

func (r *failingRegistry) Facets() []string {
	return r.inner.Facets()
}

func TestOrchestrator_Analyze_TemplateResolutionFailureIsIsolated(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			return respond(facetContent(req.Metadata["facet"])), nil
		},
	}
	registry := &failingRegistry{inner: prompt.NewRegistry(), broken: domain.FacetSentiment}
	orchestrator := analysis.NewOrchestrator(client, registry, nil, nil, analysis.Config{})

	composite, err := orchestrator.Analyze(context.Background(), testDocument, domain.DefaultAnalysisOptions())

	require.NoError(t, err)
	require.Len(t, composite.Results, 5)

	require.True(t, composite.Results[domain.FacetSentiment].Failed())
	require.Contains(t, composite.Results[domain.FacetSentiment].Err, "template store unavailable")
	for _, facet := range []string{
		domain.FacetComprehensive,
		domain.FacetSummary,
		domain.FacetKeywords,
		domain.FacetCategorization,
	} {
		require.False(t, composite.Results[facet].Failed(), "facet %s unexpectedly failed", facet)
	}

	// Only the resolvable facets reach the completion service.
	require.Equal(t, 4, client.callCount())
	require.Nil(t, client.requestFor(domain.FacetSentiment))
}

func TestOrchestrator_Analyze_AllFacetsFailed(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, _ *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			return nil, errors.New("service unavailable")
		},
	}
	orchestrator := newOrchestrator(client)

	composite, err := orchestrator.Analyze(context.Background(), testDocument, domain.DefaultAnalysisOptions())

	require.Nil(t, composite)

	var analysisErr *domain.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	require.Len(t, analysisErr.FacetErrors, 5)
	require.Contains(t, err.Error(), "all 5 analysis facets failed")
}

func TestOrchestrator_Analyze_KeywordFallback(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			if req.Metadata["facet"] == domain.FacetKeywords {
				return respond("data data data science science model"), nil
			}
			return respond(facetContent(req.Metadata["facet"])), nil
		},
	}
	orchestrator := newOrchestrator(client)

	composite, err := orchestrator.Analyze(context.Background(), testDocument, domain.DefaultAnalysisOptions())

	require.NoError(t, err)
	result := composite.Results[domain.FacetKeywords]
	require.False(t, result.Failed())

	value, ok := result.StructuredValue()
	require.True(t, ok)
	require.Equal(t, "frequency", value["extractionMethod"])

	primary, ok := value["primaryKeywords"].([]string)
	require.True(t, ok)
	require.Equal(t, []string{"data", "science", "model"}, primary)
}

func TestOrchestrator_Analyze_DegradedStructuredValues(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			switch req.Metadata["facet"] {
			case domain.FacetComprehensive:
				return respond("I could not produce JSON, sorry."), nil
			case domain.FacetSentiment:
				return respond("The document feels upbeat."), nil
			default:
				return respond(facetContent(req.Metadata["facet"])), nil
			}
		},
	}
	orchestrator := newOrchestrator(client)

	composite, err := orchestrator.Analyze(context.Background(), testDocument, domain.DefaultAnalysisOptions())

	require.NoError(t, err)

	comprehensive, ok := composite.Results[domain.FacetComprehensive].StructuredValue()
	require.True(t, ok)
	require.Equal(t, false, comprehensive["structured"])
	require.Equal(t, "I could not produce JSON, sorry.", comprehensive["rawAnalysis"])

	sentiment, ok := composite.Results[domain.FacetSentiment].StructuredValue()
	require.True(t, ok)
	require.Equal(t, "low", sentiment["confidence"])
	require.Equal(t, "The document feels upbeat.", sentiment["rawResponse"])
}

func TestOrchestrator_Analyze_FacetSelection(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			return respond(facetContent(req.Metadata["facet"])), nil
		},
	}
	orchestrator := newOrchestrator(client)

	opts := domain.AnalysisOptions{
		Model:              domain.ModelStandard,
		SkipSummary:        true,
		SkipCategorization: true,
		SkipSentiment:      true,
	}
	composite, err := orchestrator.Analyze(context.Background(), testDocument, opts)

	require.NoError(t, err)
	require.Equal(t, 2, client.callCount())
	require.Len(t, composite.Results, 2)
	require.Contains(t, composite.Results, domain.FacetComprehensive)
	require.Contains(t, composite.Results, domain.FacetKeywords)
	require.Equal(t, string(domain.ModelStandard), composite.ModelUsed)
}

func TestOrchestrator_Analyze_ZeroValueOptionsRunFullAnalysis(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			return respond(facetContent(req.Metadata["facet"])), nil
		},
	}
	orchestrator := newOrchestrator(client)

	composite, err := orchestrator.Analyze(context.Background(), testDocument, domain.AnalysisOptions{})

	require.NoError(t, err)
	require.Equal(t, 5, client.callCount())
	require.Len(t, composite.Results, 5)
	require.Equal(t, string(domain.ModelEfficient), composite.ModelUsed)
}

func TestOrchestrator_Analyze_CustomPrompts(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			return respond(facetContent(req.Metadata["facet"])), nil
		},
	}
	orchestrator := newOrchestrator(client)

	opts := domain.DefaultAnalysisOptions()
	opts.CustomPrompts = map[string]domain.PromptTemplate{
		domain.FacetSummary: {User: "Summarize briefly: {{CONTENT}}"},
	}

	_, err := orchestrator.Analyze(context.Background(), testDocument, opts)
	require.NoError(t, err)

	req := client.requestFor(domain.FacetSummary)
	require.NotNil(t, req)
	require.Len(t, req.Messages, 2)
	require.Equal(t, "Summarize briefly: "+testDocument, req.Messages[1].Content)
	// System prompt falls back to the registry default.
	require.NotEmpty(t, req.Messages[0].Content)
}

func TestOrchestrator_Analyze_OfflineEchoService(t *testing.T) {
	orchestrator := newOrchestrator(echo.NewService())

	composite, err := orchestrator.Analyze(context.Background(), testDocument, domain.DefaultAnalysisOptions())

	require.NoError(t, err)
	require.Len(t, composite.Results, 5)
	for facet, result := range composite.Results {
		require.False(t, result.Failed(), "facet %s failed offline", facet)
	}
	require.NotEmpty(t, composite.Summary.MainFindings.ExecutiveSummary)
	require.Positive(t, composite.Usage.TotalTokens)
}

func TestOrchestrator_Analyze_SamplingBudgets(t *testing.T) {
	client := &mockCompletionService{
		completeFunc: func(_ context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
			return respond(facetContent(req.Metadata["facet"])), nil
		},
	}
	orchestrator := newOrchestrator(client)

	_, err := orchestrator.Analyze(context.Background(), testDocument, domain.DefaultAnalysisOptions())
	require.NoError(t, err)

	comprehensive := client.requestFor(domain.FacetComprehensive)
	keywords := client.requestFor(domain.FacetKeywords)
	require.NotNil(t, comprehensive)
	require.NotNil(t, keywords)

	require.InEpsilon(t, 0.3, comprehensive.Temperature, 1e-9)
	require.Greater(t, comprehensive.MaxTokens, keywords.MaxTokens)
	require.False(t, comprehensive.Stream)

	require.True(t, strings.Contains(comprehensive.Messages[1].Content, testDocument))
}
