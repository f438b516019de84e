// Package echo provides a deterministic offline completion service. It
// implements the domain.CompletionService interface without making external
// calls, returning canned facet-shaped responses for testing and dry runs.
package echo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docmind/docmind/internal/domain"
	"github.com/docmind/docmind/internal/observability"
)

const providerName = "echo"

// Canned structured responses keyed by facet. The shapes match what the real
// prompts instruct the model to produce, so the orchestrator exercises its
// normal parse path offline.
var facetResponses = map[string]string{
	domain.FacetComprehensive: `{
  "executiveSummary": "Offline analysis of the supplied document.",
  "keyPoints": ["generated offline", "no remote calls made"],
  "primaryCategory": "general",
  "overallSentiment": "neutral",
  "recommendations": ["re-run against the live endpoint for a real analysis"],
  "detailedAnalysis": "This response was produced by the echo service."
}`,
	domain.FacetKeywords: `{
  "primaryKeywords": ["document", "analysis", "offline"],
  "secondaryKeywords": ["echo", "testing"],
  "keyPhrases": ["offline analysis"]
}`,
	domain.FacetCategorization: `{
  "primaryCategory": "general",
  "secondaryCategories": ["testing"],
  "documentType": "document",
  "confidence": "low"
}`,
	domain.FacetSentiment: `{
  "overallSentiment": "neutral",
  "confidence": "low",
  "tone": "informational",
  "emotionalIndicators": []
}`,
}

// Service implements the domain.CompletionService interface for offline use.
type Service struct {
	name string
}

// NewService creates a new echo service. No configuration is required as this
// service operates entirely in-memory.
func NewService() *Service {
	return &Service{name: providerName}
}

// Name returns the service identifier.
func (s *Service) Name() string {
	return s.name
}

// Complete returns a canned response for the request's facet. Requests without
// facet metadata echo their user message back.
func (s *Service) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)

	facet := req.Metadata["facet"]
	content, ok := facetResponses[facet]
	if !ok {
		content = buildEchoContent(req.Messages)
	}

	promptTokens := countTokens(req.Messages)
	completionTokens := countWords(content)

	logger.Debug("echo completion",
		observability.String("echo_facet", facet),
		observability.Int("prompt_tokens", promptTokens),
		observability.Int("completion_tokens", completionTokens),
	)

	return &domain.CompletionResponse{
		ID:         fmt.Sprintf("echo-%d", time.Now().UnixNano()),
		Model:      string(req.Model),
		Deployment: providerName,
		Content:    content,
		Usage: domain.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		FinishTime: time.Now(),
	}, nil
}

// buildEchoContent concatenates the user messages of the request.
func buildEchoContent(messages []domain.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == domain.RoleUser {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func countTokens(messages []domain.Message) int {
	total := 0
	for _, msg := range messages {
		total += countWords(msg.Content)
	}
	return total
}

// countWords is a simple word-based token approximation.
func countWords(s string) int {
	return len(strings.Fields(s))
}
