package mwalimu

// Mode identifies the type of tutoring request. It namespaces cache keys and
// selects the retrieval budget for a request.
type Mode string

const (
	// ModeSummarize produces a bilingual revision summary of a chapter.
	ModeSummarize Mode = "summarize"
	// ModeRevision answers every official revision question of a chapter.
	ModeRevision Mode = "revision"
	// ModeAsk answers a single free-form question.
	ModeAsk Mode = "ask"
)

// SwahiliFallback is substituted for the Swahili half of an answer when the
// Swahili variant cannot be produced. It is a fixed string so callers can
// detect it and so responses stay structurally complete.
const SwahiliFallback = "(Swahili version not available)"

// BilingualAnswer holds both language variants of a generated answer.
// Both fields are always populated; Swahili carries SwahiliFallback when
// generation of the Swahili half failed.
type BilingualAnswer struct {
	English string `json:"english"`
	Swahili string `json:"swahili"`
}

// RevisionItem is one answered revision question within a batch.
type RevisionItem struct {
	QuestionText    string          `json:"question_text"`
	SwahiliQuestion string          `json:"swahili_question"`
	Answer          BilingualAnswer `json:"answer"`
}

// Passage is a ranked text excerpt returned by the Retriever. Passages are
// read-only: they are consumed during a single request and never persisted.
type Passage struct {
	Text        string  // Excerpt text
	Chapter     string  // Chapter tag (e.g., "3.1")
	ChapterRoot string  // Major chapter (e.g., "3")
	Type        string  // Passage type: "content" or "revision"
	Score       float64 // Similarity score from the index
}

// Passage type tags used by the indexed corpus.
const (
	PassageContent  = "content"
	PassageRevision = "revision"
)

// Filter restricts a retrieval query to a slice of the indexed corpus.
// Zero-value fields are omitted from the query.
type Filter struct {
	Type        string   // Passage type to match exactly
	Chapters    []string // Chapter tags to match (any of)
	ChapterRoot string   // Major chapter to match exactly
}

// ChapterVariants expands a major chapter identifier into the chapter tags
// used by the corpus: "3" becomes ["3", "3.1", ... "3.9"]. Identifiers that
// already name a subchapter ("3.7") are returned as-is.
func ChapterVariants(chapter string) []string {
	s := trimmed(chapter)
	if s == "" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return []string{s}
		}
	}
	variants := make([]string, 0, 10)
	variants = append(variants, s)
	for i := 1; i <= 9; i++ {
		variants = append(variants, s+"."+string(rune('0'+i)))
	}
	return variants
}

// MajorChapter returns the part of a chapter identifier before the first
// dot: "3.7" becomes "3".
func MajorChapter(chapter string) string {
	s := trimmed(chapter)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i]
		}
	}
	return s
}
