package analysis

import (
	"sort"
	"strings"
	"unicode"
)

const (
	minKeywordLength    = 4
	maxKeywords         = 20
	primaryKeywordCount = 10
)

// FallbackKeywords is the deterministic keyword extractor applied when the
// keywords facet returns unparsable output: lower-case the text, strip
// punctuation, drop short words, rank by frequency (ties broken
// lexicographically) and split the top words into primary and secondary
// buckets.
func FallbackKeywords(text string) map[string]any {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	counts := make(map[string]int)
	for _, word := range strings.Fields(cleaned) {
		if len(word) < minKeywordLength {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}

	primary := words
	secondary := []string{}
	if len(words) > primaryKeywordCount {
		primary = words[:primaryKeywordCount]
		secondary = words[primaryKeywordCount:]
	}

	return map[string]any{
		"primaryKeywords":   primary,
		"secondaryKeywords": secondary,
		"extractionMethod":  "frequency",
	}
}
