// Package prompt maintains the facet template registry: the static mapping
// from analysis facet names to their system prompt and user prompt template.
package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/docmind/docmind/internal/domain"
)

// Registry implements the domain.PromptRegistry interface.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]domain.PromptTemplate
}

// NewRegistry creates a registry pre-seeded with the default facet templates.
func NewRegistry() *Registry {
	return &Registry{
		mu: sync.RWMutex{},
		templates: map[string]domain.PromptTemplate{
			domain.FacetComprehensive:  {System: comprehensiveSystem, User: comprehensiveUser},
			domain.FacetSummary:        {System: summarySystem, User: summaryUser},
			domain.FacetKeywords:       {System: keywordsSystem, User: keywordsUser},
			domain.FacetCategorization: {System: categorizationSystem, User: categorizationUser},
			domain.FacetSentiment:      {System: sentimentSystem, User: sentimentUser},
		},
	}
}

// Register adds or replaces the template for a facet.
func (r *Registry) Register(facet string, tmpl domain.PromptTemplate) error {
	if facet == "" {
		return errors.New("facet name cannot be empty")
	}
	if tmpl.User == "" {
		return fmt.Errorf("facet %s: user template cannot be empty", facet)
	}
	if !strings.Contains(tmpl.User, domain.ContentPlaceholder) {
		return fmt.Errorf("facet %s: user template must contain %s", facet, domain.ContentPlaceholder)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates[facet] = tmpl
	return nil
}

// Resolve returns the template registered for a facet.
func (r *Registry) Resolve(facet string) (domain.PromptTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, exists := r.templates[facet]
	if !exists {
		return domain.PromptTemplate{}, fmt.Errorf("no template registered for facet: %s", facet)
	}

	return tmpl, nil
}

// Facets returns all registered facet names, sorted.
func (r *Registry) Facets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	facets := make([]string, 0, len(r.templates))
	for facet := range r.templates {
		facets = append(facets, facet)
	}
	sort.Strings(facets)

	return facets
}

// Render substitutes document content into a template's user prompt.
func Render(tmpl domain.PromptTemplate, content string) (system, user string) {
	return tmpl.System, strings.ReplaceAll(tmpl.User, domain.ContentPlaceholder, content)
}
