// Package export transforms a composite analysis into serialized artifacts.
// Every transformation is a pure function of the composite value; the only
// clock read is the embedded generation timestamp of the summary format, which
// is injectable for deterministic output.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docmind/docmind/internal/domain"
)

// CSVHeader is the fixed header row of the tabular format.
const CSVHeader = "Analysis Component,Key,Value"

// facetOrder fixes the rendering order of the known facets; unknown facets
// follow, sorted.
var facetOrder = []string{
	domain.FacetComprehensive,
	domain.FacetSummary,
	domain.FacetKeywords,
	domain.FacetCategorization,
	domain.FacetSentiment,
}

// Exporter implements the export contract.
type Exporter struct {
	now func() time.Time
}

// NewExporter creates a new exporter.
func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

// NewExporterWithClock creates an exporter with a fixed clock, for
// byte-identical artifacts.
func NewExporterWithClock(now func() time.Time) *Exporter {
	return &Exporter{now: now}
}

// Export serializes the composite into the requested format.
func (e *Exporter) Export(composite *domain.CompositeAnalysis, format domain.ExportFormat) (*domain.ExportArtifact, error) {
	if composite == nil {
		return nil, errors.New("composite cannot be nil")
	}

	switch format {
	case domain.FormatJSON:
		return e.exportJSON(composite)
	case domain.FormatCSV:
		return e.exportCSV(composite)
	case domain.FormatMarkdown:
		return e.exportMarkdown(composite)
	case domain.FormatSummary:
		return e.exportSummary(composite)
	default:
		return nil, &domain.UnsupportedFormatError{Format: string(format)}
	}
}

func (e *Exporter) exportJSON(composite *domain.CompositeAnalysis) (*domain.ExportArtifact, error) {
	content, err := json.MarshalIndent(composite, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal composite: %w", err)
	}

	return &domain.ExportArtifact{
		Content:  string(content),
		MIMEType: "application/json",
		Filename: baseFilename(composite) + ".json",
	}, nil
}

func (e *Exporter) exportCSV(composite *domain.CompositeAnalysis) (*domain.ExportArtifact, error) {
	var sb strings.Builder
	sb.WriteString(CSVHeader)
	sb.WriteString("\n")

	for _, facet := range orderedFacets(composite) {
		result := composite.Results[facet]
		if result.Failed() {
			continue
		}
		for _, row := range flattenValue("", result.Value) {
			sb.WriteString(facet)
			sb.WriteString(",")
			sb.WriteString(row.key)
			sb.WriteString(",")
			sb.WriteString(quoteCSV(row.value))
			sb.WriteString("\n")
		}
	}

	return &domain.ExportArtifact{
		Content:  sb.String(),
		MIMEType: "text/csv",
		Filename: baseFilename(composite) + ".csv",
	}, nil
}

func (e *Exporter) exportMarkdown(composite *domain.CompositeAnalysis) (*domain.ExportArtifact, error) {
	var sb strings.Builder
	sb.WriteString("# Document Analysis\n\n")
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", composite.Timestamp.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Model:** %s\n\n", composite.ModelUsed))
	sb.WriteString(fmt.Sprintf("**Document Length:** %d characters\n", composite.DocumentLength))

	for _, facet := range orderedFacets(composite) {
		result := composite.Results[facet]
		if result.Failed() {
			continue
		}

		sb.WriteString("\n## ")
		sb.WriteString(headingFor(facet))
		sb.WriteString("\n\n")
		writeMarkdownValue(&sb, result.Value)
	}

	return &domain.ExportArtifact{
		Content:  sb.String(),
		MIMEType: "text/markdown",
		Filename: baseFilename(composite) + ".md",
	}, nil
}

func (e *Exporter) exportSummary(composite *domain.CompositeAnalysis) (*domain.ExportArtifact, error) {
	report := map[string]any{
		"title":          "Document Analysis Summary",
		"generatedAt":    e.now().UTC().Format(time.RFC3339),
		"documentLength": composite.DocumentLength,
		"modelUsed":      composite.ModelUsed,
		"highlights":     composite.Summary,
		"analysis":       composite,
	}

	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary report: %w", err)
	}

	return &domain.ExportArtifact{
		Content:  string(content),
		MIMEType: "application/json",
		Filename: "analysis-summary-" + composite.Timestamp.UTC().Format("20060102-150405") + ".json",
	}, nil
}

func baseFilename(composite *domain.CompositeAnalysis) string {
	return "analysis-" + composite.Timestamp.UTC().Format("20060102-150405")
}

// orderedFacets returns the composite's facets in canonical order, with any
// unknown facets appended in sorted order.
func orderedFacets(composite *domain.CompositeAnalysis) []string {
	known := make(map[string]bool, len(facetOrder))
	facets := make([]string, 0, len(composite.Results))

	for _, facet := range facetOrder {
		known[facet] = true
		if _, exists := composite.Results[facet]; exists {
			facets = append(facets, facet)
		}
	}

	extra := make([]string, 0)
	for facet := range composite.Results {
		if !known[facet] {
			extra = append(extra, facet)
		}
	}
	sort.Strings(extra)

	return append(facets, extra...)
}

type flatRow struct {
	key   string
	value string
}

// flattenValue walks a facet value depth-first, producing one row per leaf
// scalar. Nested object keys join with "."; arrays join their stringified
// elements with "; " and count as a single leaf.
func flattenValue(prefix string, value any) []flatRow {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		rows := make([]flatRow, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, flattenValue(joinKey(prefix, key), v[key])...)
		}
		return rows
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatScalar(item))
		}
		return []flatRow{{key: leafKey(prefix), value: strings.Join(parts, "; ")}}
	case []string:
		return []flatRow{{key: leafKey(prefix), value: strings.Join(v, "; ")}}
	default:
		return []flatRow{{key: leafKey(prefix), value: formatScalar(value)}}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// leafKey names a scalar that sits directly at the facet root.
func leafKey(prefix string) string {
	if prefix == "" {
		return "value"
	}
	return prefix
}

func formatScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// quoteCSV always quotes a value, doubling internal quotes.
func quoteCSV(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func headingFor(facet string) string {
	if facet == "" {
		return facet
	}
	return strings.ToUpper(facet[:1]) + facet[1:]
}

func writeMarkdownValue(sb *strings.Builder, value any) {
	switch v := value.(type) {
	case string:
		sb.WriteString(v)
		sb.WriteString("\n")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			writeMarkdownField(sb, key, v[key])
		}
	default:
		sb.WriteString(formatScalar(value))
		sb.WriteString("\n")
	}
}

func writeMarkdownField(sb *strings.Builder, key string, value any) {
	label := "**" + humanizeKey(key) + ":**"

	switch v := value.(type) {
	case []any:
		sb.WriteString(label)
		sb.WriteString("\n\n")
		for _, item := range v {
			sb.WriteString("- ")
			sb.WriteString(formatScalar(item))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	case []string:
		sb.WriteString(label)
		sb.WriteString("\n\n")
		for _, item := range v {
			sb.WriteString("- ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	case map[string]any:
		sb.WriteString(label)
		sb.WriteString("\n\n```json\n")
		if encoded, err := json.MarshalIndent(v, "", "  "); err == nil {
			sb.Write(encoded)
		}
		sb.WriteString("\n```\n\n")
	default:
		sb.WriteString(label)
		sb.WriteString(" ")
		sb.WriteString(formatScalar(value))
		sb.WriteString("\n\n")
	}
}

// humanizeKey turns a camelCase field name into a title-cased label,
// e.g. "executiveSummary" becomes "Executive Summary".
func humanizeKey(key string) string {
	var sb strings.Builder
	for i, r := range key {
		if i == 0 {
			sb.WriteRune(toUpper(r))
			continue
		}
		if r >= 'A' && r <= 'Z' {
			sb.WriteRune(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
