package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey holds the unique identifier of one completion call.
	RequestIDKey contextKey = "request_id"

	// AnalysisIDKey holds the identifier of one analyze invocation.
	AnalysisIDKey contextKey = "analysis_id"

	// FacetKey holds the facet name for this task.
	FacetKey contextKey = "facet"

	// ModelKey holds the logical model name for this request.
	ModelKey contextKey = "model"

	// DeploymentKey holds the resolved deployment identifier.
	DeploymentKey contextKey = "deployment"
)

// WithRequestID injects request ID into context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithAnalysisID injects analysis ID into context.
func WithAnalysisID(ctx context.Context, analysisID string) context.Context {
	return context.WithValue(ctx, AnalysisIDKey, analysisID)
}

// WithFacet injects facet name into context.
func WithFacet(ctx context.Context, facet string) context.Context {
	return context.WithValue(ctx, FacetKey, facet)
}

// WithModel injects model name into context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// WithDeployment injects the resolved deployment identifier into context.
func WithDeployment(ctx context.Context, deployment string) context.Context {
	return context.WithValue(ctx, DeploymentKey, deployment)
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetAnalysisID extracts analysis ID from context.
func GetAnalysisID(ctx context.Context) string {
	if analysisID, ok := ctx.Value(AnalysisIDKey).(string); ok {
		return analysisID
	}
	return ""
}

// GetFacet extracts facet name from context.
func GetFacet(ctx context.Context) string {
	if facet, ok := ctx.Value(FacetKey).(string); ok {
		return facet
	}
	return ""
}

// GetModel extracts model name from context.
func GetModel(ctx context.Context) string {
	if model, ok := ctx.Value(ModelKey).(string); ok {
		return model
	}
	return ""
}

// GetDeployment extracts the deployment identifier from context.
func GetDeployment(ctx context.Context) string {
	if deployment, ok := ctx.Value(DeploymentKey).(string); ok {
		return deployment
	}
	return ""
}

// GenerateRequestID generates a unique request identifier (UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateAnalysisID generates a unique analysis identifier (UUID).
func GenerateAnalysisID() string {
	return uuid.New().String()
}

// NewAnalysisContext seeds a context with a fresh analysis ID and the logical
// model, so every facet task logs under the same analysis scope.
func NewAnalysisContext(ctx context.Context, model string) context.Context {
	ctx = WithAnalysisID(ctx, GenerateAnalysisID())
	return WithModel(ctx, model)
}
