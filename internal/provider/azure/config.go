package azure

// Config contains the completion client configuration. All fields are
// immutable once the client is constructed.
type Config struct {
	// Endpoint is the Azure OpenAI resource endpoint, e.g.
	// https://myresource.openai.azure.com.
	Endpoint string `env:"AZURE_OPENAI_ENDPOINT"`

	// APIKey is the resource credential.
	APIKey string `env:"AZURE_OPENAI_API_KEY"`

	// APIVersion selects the service API version.
	APIVersion string `env:"AZURE_OPENAI_API_VERSION" envDefault:"2024-06-01"`

	// Deployments maps logical model names to deployment identifiers.
	Deployments map[string]string `env:"AZURE_OPENAI_DEPLOYMENTS" envSeparator:"," envKeyValSeparator:"=" envDefault:"gpt-4o=gpt-4o,gpt-4o-mini=gpt-4o-mini"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `env:"AZURE_OPENAI_TIMEOUT" envDefault:"120"`

	// MaxRetries bounds additional attempts after the first; a call makes at
	// most MaxRetries+1 attempts.
	MaxRetries int `env:"AZURE_OPENAI_MAX_RETRIES" envDefault:"3"`

	// BaseRetryDelayMS is the backoff unit: attempt N waits N times this long
	// unless the server supplied a Retry-After value.
	BaseRetryDelayMS int `env:"AZURE_OPENAI_BASE_RETRY_DELAY_MS" envDefault:"2000"`

	// RequestsPerMinute enables a client-side token-bucket limiter when
	// positive; zero disables it.
	RequestsPerMinute float64 `env:"AZURE_OPENAI_RPM" envDefault:"0"`

	// Burst is the limiter burst size.
	Burst int `env:"AZURE_OPENAI_RPM_BURST" envDefault:"1"`

	// Default sampling parameters applied when a request leaves them unset.
	TopP             float64 `env:"AZURE_OPENAI_TOP_P"             envDefault:"0.95"`
	FrequencyPenalty float64 `env:"AZURE_OPENAI_FREQUENCY_PENALTY" envDefault:"0"`
	PresencePenalty  float64 `env:"AZURE_OPENAI_PRESENCE_PENALTY"  envDefault:"0"`
}
