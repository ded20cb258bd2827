package mwalimu

import (
	"regexp"
	"strings"
)

// Revision passages mix real questions with section headers and page
// furniture. The filters below keep only text that plausibly asks the
// student something.

var noisePrefixes = []string{"index", "--- page", "chapter", "fig.", "plate"}

// Section titles that appear inside revision passages but are not questions.
var headerKeywords = []string{
	"introduction", "the cell", "the light microscope", "the electron microscope",
	"classification", "preparation of", "estimation of", "external features",
	"magnification", "handling and care",
}

var questionIndicators = []string{
	"what", "why", "how", "when", "where", "which", "who",
	"explain", "define", "describe", "list", "state", "name",
	"give", "distinguish", "compare", "calculate", "discuss",
}

var enumeratorRE = regexp.MustCompile(`^\d{1,3}[.)]\s*\(?\w?\)?`)

// LikelyQuestion reports whether cleaned text looks like an actual revision
// question rather than a section header or noise.
func LikelyQuestion(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 15 {
		return false
	}

	lower := strings.ToLower(text)
	for _, kw := range headerKeywords {
		if lower == kw || strings.HasPrefix(lower, kw+" ") {
			return false
		}
	}

	if strings.Contains(text, "?") {
		return true
	}
	if enumeratorRE.MatchString(text) {
		return true
	}

	hasIndicator := false
	for _, word := range questionIndicators {
		if strings.Contains(lower, word) {
			hasIndicator = true
			break
		}
	}
	if hasIndicator {
		return true
	}

	// Short text with no question characteristics is a title.
	return len(text) >= 50
}

// ExtractQuestions pulls the revision questions out of retrieved revision
// passages. Each passage holds a single question candidate (the corpus is
// split at indexing time). Candidates are normalized, filtered through
// LikelyQuestion, and deduplicated while preserving first-seen order.
func ExtractQuestions(passages []Passage) []string {
	seen := make(map[string]bool)
	var questions []string

	for _, p := range passages {
		text := strings.TrimSpace(p.Text)
		if text == "" || isNoise(text) {
			continue
		}

		q := NormalizeQuestion(text)
		if q == "" || isNoise(q) || !LikelyQuestion(q) {
			continue
		}
		if seen[q] {
			continue
		}
		seen[q] = true
		questions = append(questions, q)
	}

	return questions
}

func isNoise(text string) bool {
	lower := strings.ToLower(text)
	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
