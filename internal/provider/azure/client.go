// Package azure provides the resilient completion client for the Azure OpenAI
// chat completions endpoint. It wraps the official SDK for transport and
// request shaping, but owns the retry policy itself: rate-limit responses back
// off by Retry-After or a multiplicative base delay, network failures back off
// and retry, and authentication, unknown-deployment and bad-request failures
// surface immediately as typed errors.
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/docmind/docmind/internal/domain"
	"github.com/docmind/docmind/internal/observability"
)

const providerName = "azure-openai"

// Client implements the domain.CompletionService interface for Azure OpenAI.
// Configuration is immutable after construction; a single client is safe for
// arbitrarily many concurrent callers.
type Client struct {
	client  openai.Client
	cfg     Config
	limiter *rate.Limiter
}

// NewClient creates a new completion client. SDK-level retries are disabled so
// the retry discipline below is the only one in effect.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, &domain.ConfigurationError{Field: "endpoint", Reason: "endpoint is required"}
	}
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{Field: "api_key", Reason: "credential is required"}
	}
	if len(cfg.Deployments) == 0 {
		return nil, &domain.ConfigurationError{Field: "deployments", Reason: "at least one model deployment mapping is required"}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 120
	}
	if cfg.BaseRetryDelayMS <= 0 {
		cfg.BaseRetryDelayMS = 2000
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	opts := []option.RequestOption{
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(time.Duration(cfg.Timeout) * time.Second),
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), burst)
	}

	return &Client{
		client:  openai.NewClient(opts...),
		cfg:     cfg,
		limiter: limiter,
	}, nil
}

// Name returns the service identifier.
func (c *Client) Name() string {
	return providerName
}

// Complete executes one logical completion call, retrying transient failures
// up to MaxRetries additional attempts. Only the final classified error is
// surfaced; intermediate attempts are logged, never returned.
func (c *Client) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	deployment, err := c.resolveDeployment(req.Model)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithDeployment(ctx, deployment)
	ctx = observability.WithRequestID(ctx, observability.GenerateRequestID())
	logger := observability.FromContext(ctx)
	logger.Debug("resolved deployment for completion call")

	params := c.toSDKParams(req, deployment)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries+1; attempt++ {
		if c.limiter != nil {
			if waitErr := c.limiter.Wait(ctx); waitErr != nil {
				return nil, fmt.Errorf("rate limiter wait: %w", waitErr)
			}
		}

		resp, callErr := c.client.Chat.Completions.New(ctx, params)
		if callErr == nil {
			logger.Debug("completion call succeeded",
				observability.Int("attempt", attempt),
				observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
				observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
				observability.Int("total_tokens", int(resp.Usage.TotalTokens)),
			)
			return c.toDomainResponse(resp, deployment), nil
		}

		final, transient, delay := c.classify(callErr, deployment, attempt)
		if final != nil {
			logger.Error("completion call failed",
				observability.Error(final),
				observability.Int("attempt", attempt),
			)
			return nil, final
		}

		lastErr = transient
		if attempt == c.cfg.MaxRetries+1 {
			break
		}

		logger.Warn("transient completion failure, backing off",
			observability.Error(callErr),
			observability.Int("attempt", attempt),
			observability.Duration("backoff", delay),
		)

		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return nil, fmt.Errorf("completion cancelled during backoff: %w", sleepErr)
		}
	}

	logger.Error("completion retry budget exhausted",
		observability.Error(lastErr),
		observability.Int("max_retries", c.cfg.MaxRetries),
	)
	return nil, lastErr
}

// resolveDeployment maps a logical model name to its deployment identifier.
func (c *Client) resolveDeployment(model domain.ModelType) (string, error) {
	if model == "" {
		model = domain.ModelEfficient
	}

	deployment, exists := c.cfg.Deployments[string(model)]
	if !exists {
		return "", &domain.ConfigurationError{
			Field:  "deployments",
			Reason: fmt.Sprintf("no deployment mapped for model %s", model),
		}
	}

	return deployment, nil
}

// classify sorts a call error into a final typed error or a transient error
// with its backoff delay. Exactly one of final and transient is non-nil.
func (c *Client) classify(err error, deployment string, attempt int) (final, transient error, delay time.Duration) {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", domain.ErrAuthenticationFailed, apiErrorMessage(apierr)), nil, 0
		case http.StatusNotFound:
			return &domain.DeploymentNotFoundError{Deployment: deployment}, nil, 0
		case http.StatusBadRequest:
			return &domain.BadRequestError{Message: apiErrorMessage(apierr)}, nil, 0
		case http.StatusTooManyRequests:
			transient = fmt.Errorf("%w: %s", domain.ErrRateLimitExceeded, apiErrorMessage(apierr))
			return nil, transient, c.retryAfterDelay(apierr.Response, attempt)
		default:
			return fmt.Errorf("completion failed with status %d: %w", apierr.StatusCode, err), nil, 0
		}
	}

	// Not an API error: connection resets, timeouts and other transport
	// failures. A cancelled parent context is final.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("completion cancelled: %w", err), nil, 0
	}

	return nil, fmt.Errorf("completion request failed: %w", err), c.retryDelay(attempt)
}

func (c *Client) baseDelay() time.Duration {
	return time.Duration(c.cfg.BaseRetryDelayMS) * time.Millisecond
}

// retryDelay returns the multiplicative backoff for a 1-based attempt number.
func (c *Client) retryDelay(attempt int) time.Duration {
	return time.Duration(attempt) * c.baseDelay()
}

// retryAfterDelay honors a Retry-After header in either integer-seconds or
// HTTP-date form. An absent or unparseable header falls back to the
// multiplicative base delay.
func (c *Client) retryAfterDelay(resp *http.Response, attempt int) time.Duration {
	if resp == nil {
		return c.retryDelay(attempt)
	}

	header := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if header == "" {
		return c.retryDelay(attempt)
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return c.retryDelay(attempt)
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(header); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
		return 0
	}

	return c.retryDelay(attempt)
}

// apiErrorMessage extracts the human-readable message from the remote error
// body when present.
func apiErrorMessage(apierr *openai.Error) string {
	if apierr.Message != "" {
		return apierr.Message
	}
	return apierr.Error()
}

// sleep blocks for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// toSDKParams converts a domain request to SDK ChatCompletionNewParams. In
// Azure mode the SDK's model field carries the deployment identifier.
func (c *Client) toSDKParams(req *domain.CompletionRequest, deployment string) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, len(req.Messages))
	for i, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleUser:
			messages[i] = openai.UserMessage(msg.Content)
		case domain.RoleAssistant:
			messages[i] = openai.AssistantMessage(msg.Content)
		case domain.RoleSystem:
			messages[i] = openai.SystemMessage(msg.Content)
		default:
			// Fallback to user message if role is unknown
			messages[i] = openai.UserMessage(msg.Content)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(deployment),
		Messages: messages,
	}

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	topP := req.TopP
	if topP == 0 {
		topP = c.cfg.TopP
	}
	if topP > 0 {
		params.TopP = openai.Float(topP)
	}

	frequencyPenalty := req.FrequencyPenalty
	if frequencyPenalty == 0 {
		frequencyPenalty = c.cfg.FrequencyPenalty
	}
	if frequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(frequencyPenalty)
	}

	presencePenalty := req.PresencePenalty
	if presencePenalty == 0 {
		presencePenalty = c.cfg.PresencePenalty
	}
	if presencePenalty != 0 {
		params.PresencePenalty = openai.Float(presencePenalty)
	}

	return params
}

// toDomainResponse converts an SDK response to the domain response. Only the
// first candidate is consumed.
func (c *Client) toDomainResponse(resp *openai.ChatCompletion, deployment string) *domain.CompletionResponse {
	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &domain.CompletionResponse{
		ID:         resp.ID,
		Model:      string(resp.Model),
		Deployment: deployment,
		Content:    content,
		Usage: domain.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		FinishTime: time.Now(),
	}
}
