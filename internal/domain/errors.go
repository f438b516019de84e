package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for failure classes that carry no payload.
var (
	// ErrAuthenticationFailed indicates the remote endpoint rejected the
	// credential. Never retried.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrRateLimitExceeded indicates the retry budget was exhausted on
	// rate-limit responses.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrContentTooShort indicates the document is below the minimum length
	// for analysis. Raised before any network call.
	ErrContentTooShort = errors.New("document content too short for analysis")
)

// ConfigurationError indicates an invalid client or orchestrator
// configuration, detected at construction.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// DeploymentNotFoundError indicates the remote endpoint does not know the
// resolved deployment. Never retried.
type DeploymentNotFoundError struct {
	Deployment string
}

func (e *DeploymentNotFoundError) Error() string {
	return fmt.Sprintf("deployment not found: %s", e.Deployment)
}

// BadRequestError indicates the remote endpoint rejected the request body.
// Never retried. Message carries the remote error body's message when present.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

// AnalysisError aggregates per-facet failures. It is returned only when every
// requested facet failed; partial failure produces a composite instead.
type AnalysisError struct {
	FacetErrors map[string]string
}

func (e *AnalysisError) Error() string {
	facets := make([]string, 0, len(e.FacetErrors))
	for facet := range e.FacetErrors {
		facets = append(facets, facet)
	}
	sort.Strings(facets)

	parts := make([]string, 0, len(facets))
	for _, facet := range facets {
		parts = append(parts, fmt.Sprintf("%s: %s", facet, e.FacetErrors[facet]))
	}

	return fmt.Sprintf("all %d analysis facets failed: %s", len(facets), strings.Join(parts, "; "))
}

// UnsupportedFormatError indicates an unknown export format.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %s", e.Format)
}
