package mwalimu

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxQuestionLen bounds the length of a normalized question text. Longer
// questions are truncated at a word boundary so payloads stay small and
// cache keys stay stable.
const MaxQuestionLen = 200

var (
	pageMarkerRE = regexp.MustCompile(`(?i)^-+\s*page\s+-+\s*`)
	dashRunRE    = regexp.MustCompile(`---+`)
	headerRE     = regexp.MustCompile(`(?i)^(index|chapter|section|part|revision|questions?)[\s:]+`)
	spaceRE      = regexp.MustCompile(`\s+`)
)

// CleanText strips structural noise from raw corpus text: page-break
// markers, dash runs, and leading header labels. Runs of whitespace collapse
// into single spaces and the result is trimmed. CleanText is idempotent and
// never fails; all-boilerplate input yields an empty string and the caller
// decides the fallback.
func CleanText(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	text = pageMarkerRE.ReplaceAllString(text, "")
	text = dashRunRE.ReplaceAllString(text, "")
	text = strings.TrimSpace(spaceRE.ReplaceAllString(text, " "))

	// Header labels can stack ("Revision Questions: ..."), so strip to a
	// fixed point to keep normalization idempotent.
	for {
		stripped := headerRE.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}

	return strings.TrimSpace(text)
}

// NormalizeQuestion cleans a question string and bounds it to
// MaxQuestionLen. The same input always yields the same output, so the
// result is safe to use for both display and cache-key derivation.
func NormalizeQuestion(raw string) string {
	return TruncateAtWord(CleanText(raw), MaxQuestionLen)
}

// TruncateAtWord shortens s to at most max bytes, cutting at the last space
// before the limit. The cut never splits a multi-byte rune. No ellipsis is
// appended; truncation is deterministic.
func TruncateAtWord(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	end := max
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	cut := s[:end]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
