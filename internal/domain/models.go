package domain

import "time"

// ModelType identifies a logical model. The completion client resolves it to a
// concrete deployment through its deployment map.
type ModelType string

const (
	// ModelStandard is the full-capability model.
	ModelStandard ModelType = "gpt-4o"

	// ModelEfficient is the cost-efficient default model.
	ModelEfficient ModelType = "gpt-4o-mini"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Facet names. Comprehensive always runs; the rest are opt-out secondaries.
const (
	FacetComprehensive  = "comprehensive"
	FacetSummary        = "summary"
	FacetKeywords       = "keywords"
	FacetCategorization = "categorization"
	FacetSentiment      = "sentiment"
)

// CompletionRequest represents a single completion call.
type CompletionRequest struct {
	Model            ModelType         `json:"model"`
	Messages         []Message         `json:"messages"`
	Temperature      float64           `json:"temperature,omitempty"`
	MaxTokens        int               `json:"max_tokens,omitempty"`
	TopP             float64           `json:"top_p,omitempty"`
	FrequencyPenalty float64           `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64           `json:"presence_penalty,omitempty"`
	Stream           bool              `json:"stream,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// CompletionResponse represents a completion result. Only the first candidate
// is ever surfaced.
type CompletionResponse struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Deployment string    `json:"deployment"`
	Content    string    `json:"content"`
	Usage      Usage     `json:"usage"`
	FinishTime time.Time `json:"finish_time"`
}

// Usage tracks token consumption. Counters attribute to exactly one request;
// Add accumulates them into a per-analysis total.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost,omitempty"`
}

// Add accumulates another request's counters into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.Cost += other.Cost
}

// PromptTemplate pairs a system prompt with a user prompt template. The user
// template carries a ContentPlaceholder that receives the document text.
type PromptTemplate struct {
	System string
	User   string
}

// ContentPlaceholder marks where document text is substituted into a user
// prompt template.
const ContentPlaceholder = "{{CONTENT}}"

// AnalysisTask is one unit of work inside an analyze call: a facet with its
// resolved prompts and sampling budget. Created per call, consumed once.
type AnalysisTask struct {
	Facet        string
	SystemPrompt string
	UserPrompt   string
	Model        ModelType
	Temperature  float64
	MaxTokens    int
}

// AnalysisOptions configures a single analyze call. Facets are opt-out: the
// zero value runs the full analysis on the default model.
type AnalysisOptions struct {
	Model              ModelType
	SkipSummary        bool
	SkipKeywords       bool
	SkipCategorization bool
	SkipSentiment      bool

	// CustomPrompts overrides registry templates per facet. Empty fields in
	// an override fall back to the registry default.
	CustomPrompts map[string]PromptTemplate
}

// DefaultAnalysisOptions returns options for the standard full analysis on the
// cost-efficient model.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{Model: ModelEfficient}
}

// DigestFindings holds the headline fields extracted from the comprehensive
// facet.
type DigestFindings struct {
	ExecutiveSummary string   `json:"executiveSummary,omitempty"`
	KeyPoints        []string `json:"keyPoints,omitempty"`
	PrimaryCategory  string   `json:"primaryCategory,omitempty"`
	OverallSentiment string   `json:"overallSentiment,omitempty"`
}

// DigestSummary is the best-effort condensation of the comprehensive facet.
// It is always present on a composite, empty when that facet failed.
type DigestSummary struct {
	MainFindings    DigestFindings `json:"mainFindings"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// CompositeAnalysis aggregates per-facet results for one analyze call.
// The Results key set equals exactly the requested facet set.
type CompositeAnalysis struct {
	Timestamp      time.Time              `json:"timestamp"`
	DocumentLength int                    `json:"documentLength"`
	ModelUsed      string                 `json:"modelUsed"`
	Results        map[string]FacetResult `json:"results"`
	Summary        DigestSummary          `json:"summary"`
	Usage          Usage                  `json:"usage"`
}

// ExportFormat selects an exporter encoding.
type ExportFormat string

// Supported export formats.
const (
	FormatJSON     ExportFormat = "json"
	FormatCSV      ExportFormat = "csv"
	FormatMarkdown ExportFormat = "markdown"
	FormatSummary  ExportFormat = "summary"
)

// ExportArtifact is a serialized rendering of a composite analysis.
type ExportArtifact struct {
	Content  string `json:"content"`
	MIMEType string `json:"mimeType"`
	Filename string `json:"filename"`
}
