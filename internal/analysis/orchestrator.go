// Package analysis implements the document analysis orchestrator: it fans
// several facet completions out against a completion service, tolerates
// per-facet failure, and assembles the composite result with its derived
// digest.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/docmind/docmind/internal/domain"
	"github.com/docmind/docmind/internal/observability"
	"github.com/docmind/docmind/internal/prompt"
)

// Sampling budgets per facet class. Low temperature favors determinism; the
// comprehensive facet gets the generous output budget because the digest is
// derived from it.
const (
	analysisTemperature    = 0.3
	comprehensiveMaxTokens = 4000
	summaryMaxTokens       = 1000
	secondaryMaxTokens     = 800
)

// Config contains orchestrator settings.
type Config struct {
	// MinContentLength is the minimum accepted document length.
	MinContentLength int

	// MaxConcurrency caps simultaneous outstanding completion calls during
	// the secondary-facet fan-out.
	MaxConcurrency int64

	// DefaultModel is used when options leave the model unset.
	DefaultModel domain.ModelType
}

// DefaultConfig returns the standard orchestrator settings.
func DefaultConfig() Config {
	return Config{
		MinContentLength: 50,
		MaxConcurrency:   4,
		DefaultModel:     domain.ModelEfficient,
	}
}

// Orchestrator runs composite document analyses. It holds no state across
// Analyze calls; one instance is safe for concurrent use.
type Orchestrator struct {
	client   domain.CompletionService
	registry domain.PromptRegistry
	events   domain.EventPublisher
	costs    domain.CostCalculator
	cfg      Config
	now      func() time.Time
}

// NewOrchestrator creates a new analysis orchestrator. events and costs may be
// nil; event publication and cost estimation are then skipped.
func NewOrchestrator(
	client domain.CompletionService,
	registry domain.PromptRegistry,
	events domain.EventPublisher,
	costs domain.CostCalculator,
	cfg Config,
) *Orchestrator {
	defaults := DefaultConfig()
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = defaults.MinContentLength
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaults.MaxConcurrency
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.DefaultModel
	}

	return &Orchestrator{
		client:   client,
		registry: registry,
		events:   events,
		costs:    costs,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Analyze runs the requested facets against the document and assembles the
// composite result. The comprehensive facet runs first, sequentially; enabled
// secondary facets then fan out concurrently under the concurrency cap. A
// facet failure never aborts its siblings: the call fails only when every
// requested facet failed.
func (o *Orchestrator) Analyze(
	ctx context.Context,
	documentText string,
	opts domain.AnalysisOptions,
) (*domain.CompositeAnalysis, error) {
	if length := len(strings.TrimSpace(documentText)); length < o.cfg.MinContentLength {
		return nil, fmt.Errorf("%w: got %d characters, need at least %d",
			domain.ErrContentTooShort, length, o.cfg.MinContentLength)
	}

	model := opts.Model
	if model == "" {
		model = o.cfg.DefaultModel
	}

	ctx = observability.NewAnalysisContext(ctx, string(model))
	logger := observability.FromContext(ctx)

	facets := requestedFacets(opts)
	logger.Info("analysis started",
		observability.Int("document_length", len(documentText)),
		observability.Int("facet_count", len(facets)),
	)
	o.publish(ctx, observability.EventAnalysisStarted, map[string]interface{}{
		"facets":          facets,
		"document_length": len(documentText),
		"model":           string(model),
	})

	results := make(map[string]domain.FacetResult, len(facets))
	var usage domain.Usage

	// Comprehensive runs to completion before the fan-out: the digest and the
	// token-budget prioritization depend on it. Its failure is recorded like
	// any other facet's and does not abort the secondaries.
	if task, err := o.buildTask(domain.FacetComprehensive, documentText, model, opts); err != nil {
		results[domain.FacetComprehensive] = domain.FailureResult(err)
	} else {
		result, taskUsage := o.runTask(ctx, task)
		results[domain.FacetComprehensive] = result
		usage.Add(taskUsage)
	}

	// Build every secondary task up front so template-resolution failures are
	// recorded before the fan-out starts touching the results map concurrently.
	tasks := make([]domain.AnalysisTask, 0, len(facets)-1)
	for _, facet := range facets[1:] {
		task, err := o.buildTask(facet, documentText, model, opts)
		if err != nil {
			results[facet] = domain.FailureResult(err)
			continue
		}
		tasks = append(tasks, task)
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := semaphore.NewWeighted(o.cfg.MaxConcurrency)

	for _, task := range tasks {
		wg.Add(1)
		go func(task domain.AnalysisTask) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				results[task.Facet] = domain.FailureResult(err)
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			result, taskUsage := o.runTask(ctx, task)

			mu.Lock()
			results[task.Facet] = result
			usage.Add(taskUsage)
			mu.Unlock()
		}(task)
	}
	wg.Wait()

	failures := collectFailures(results)
	if len(failures) == len(results) {
		logger.Error("analysis failed: every requested facet failed",
			observability.Int("facet_count", len(results)),
		)
		return nil, &domain.AnalysisError{FacetErrors: failures}
	}

	composite := &domain.CompositeAnalysis{
		Timestamp:      o.now().UTC(),
		DocumentLength: len(documentText),
		ModelUsed:      string(model),
		Results:        results,
		Summary:        deriveDigest(results[domain.FacetComprehensive]),
		Usage:          usage,
	}

	if o.costs != nil {
		cost, _ := o.costs.Calculate(ctx, string(model), usage)
		composite.Usage.Cost = cost
	}

	logger.Info("analysis completed",
		observability.Int("facet_count", len(results)),
		observability.Int("failed_facets", len(failures)),
		observability.Int("total_tokens", composite.Usage.TotalTokens),
		observability.Float64("estimated_cost", composite.Usage.Cost),
	)
	o.publish(ctx, observability.EventAnalysisCompleted, map[string]interface{}{
		"facet_count":   len(results),
		"failed_facets": len(failures),
		"total_tokens":  composite.Usage.TotalTokens,
	})

	return composite, nil
}

// requestedFacets returns the facet list for the options, comprehensive first.
func requestedFacets(opts domain.AnalysisOptions) []string {
	facets := []string{domain.FacetComprehensive}
	if !opts.SkipSummary {
		facets = append(facets, domain.FacetSummary)
	}
	if !opts.SkipKeywords {
		facets = append(facets, domain.FacetKeywords)
	}
	if !opts.SkipCategorization {
		facets = append(facets, domain.FacetCategorization)
	}
	if !opts.SkipSentiment {
		facets = append(facets, domain.FacetSentiment)
	}
	return facets
}

// buildTask resolves the facet's template, applies any custom override, and
// substitutes the document text.
func (o *Orchestrator) buildTask(
	facet, documentText string,
	model domain.ModelType,
	opts domain.AnalysisOptions,
) (domain.AnalysisTask, error) {
	tmpl, err := o.registry.Resolve(facet)
	if err != nil {
		// A fully-specified override can stand in for a missing template.
		override, ok := opts.CustomPrompts[facet]
		if !ok || override.User == "" {
			return domain.AnalysisTask{}, err
		}
		tmpl = override
	} else if override, ok := opts.CustomPrompts[facet]; ok {
		if override.System != "" {
			tmpl.System = override.System
		}
		if override.User != "" {
			tmpl.User = override.User
		}
	}

	system, user := prompt.Render(tmpl, documentText)

	return domain.AnalysisTask{
		Facet:        facet,
		SystemPrompt: system,
		UserPrompt:   user,
		Model:        model,
		Temperature:  analysisTemperature,
		MaxTokens:    maxTokensFor(facet),
	}, nil
}

func maxTokensFor(facet string) int {
	switch facet {
	case domain.FacetComprehensive:
		return comprehensiveMaxTokens
	case domain.FacetSummary:
		return summaryMaxTokens
	default:
		return secondaryMaxTokens
	}
}

// runTask executes one facet task. Any completion error is converted into the
// facet's failure result here, at the task boundary.
func (o *Orchestrator) runTask(ctx context.Context, task domain.AnalysisTask) (domain.FacetResult, domain.Usage) {
	ctx = observability.WithFacet(ctx, task.Facet)
	logger := observability.FromContext(ctx)

	req := &domain.CompletionRequest{
		Model: task.Model,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: task.SystemPrompt},
			{Role: domain.RoleUser, Content: task.UserPrompt},
		},
		Temperature: task.Temperature,
		MaxTokens:   task.MaxTokens,
		Metadata:    map[string]string{"facet": task.Facet},
	}

	resp, err := o.client.Complete(ctx, req)
	if err != nil {
		logger.Warn("facet task failed", observability.Error(err))
		o.publish(ctx, observability.EventFacetFailed, map[string]interface{}{
			"facet": task.Facet,
			"error": err.Error(),
		})
		return domain.FailureResult(err), domain.Usage{}
	}

	logger.Debug("facet task completed",
		observability.Int("total_tokens", resp.Usage.TotalTokens),
	)
	o.publish(ctx, observability.EventFacetCompleted, map[string]interface{}{
		"facet":        task.Facet,
		"total_tokens": resp.Usage.TotalTokens,
	})

	return domain.SuccessResult(o.interpret(task.Facet, resp.Content)), resp.Usage
}

// interpret converts raw completion text into the facet's value, applying the
// facet-specific deterministic fallback when structured parsing fails.
func (o *Orchestrator) interpret(facet, content string) any {
	if facet == domain.FacetSummary {
		// Narrative facet: the text is the value.
		return content
	}

	structured, err := ParseStructured(content)
	if err == nil {
		return structured
	}

	switch facet {
	case domain.FacetKeywords:
		return FallbackKeywords(content)
	case domain.FacetComprehensive:
		return map[string]any{"rawAnalysis": content, "structured": false}
	default:
		return map[string]any{"rawResponse": content, "confidence": "low"}
	}
}

// deriveDigest extracts headline findings from the comprehensive facet. It
// never fails: a failed or unstructured facet yields an empty digest.
func deriveDigest(comprehensive domain.FacetResult) domain.DigestSummary {
	var digest domain.DigestSummary

	if comprehensive.Failed() {
		return digest
	}
	value, ok := comprehensive.StructuredValue()
	if !ok {
		return digest
	}

	digest.MainFindings.ExecutiveSummary = stringField(value, "executiveSummary")
	digest.MainFindings.KeyPoints = stringSliceField(value, "keyPoints")
	digest.MainFindings.PrimaryCategory = stringField(value, "primaryCategory")
	digest.MainFindings.OverallSentiment = stringField(value, "overallSentiment")
	digest.Recommendations = stringSliceField(value, "recommendations")

	return digest
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringSliceField(m map[string]any, key string) []string {
	if s, ok := m[key].([]string); ok {
		return s
	}

	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func collectFailures(results map[string]domain.FacetResult) map[string]string {
	failures := make(map[string]string)
	for facet, result := range results {
		if result.Failed() {
			failures[facet] = result.Err
		}
	}
	return failures
}

func (o *Orchestrator) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if o.events == nil {
		return
	}
	o.events.Publish(ctx, eventType, data)
}
