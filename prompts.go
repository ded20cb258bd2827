package mwalimu

import (
	"fmt"
	"strings"
)

// CompletionRequest is the input to a Generator: a system instruction and a
// user message assembled from retrieved passages plus the original request.
type CompletionRequest struct {
	System string
	User   string
}

const tutorRole = "You are a helpful, curriculum-aligned Biology tutor for Form 1 students in Kenya."

const bilingualFormat = `IMPORTANT: You MUST provide your answer in BOTH languages:

1. First, write a clear, complete answer in English.
2. Then, write the SAME answer in Swahili (a direct translation or explanation in Swahili).

Format your response EXACTLY as follows:

ENGLISH:
[your complete English answer here]

SWAHILI:
[your complete Swahili answer here]`

// noContextNote flags retrieval misses to the model so the answer itself
// communicates the lack of findable content instead of the request failing.
const noContextNote = "(No matching textbook content was found for this request. " +
	"State that the material could not be located and answer only from general curriculum knowledge.)"

// AnswerPrompt assembles the generation prompt for a single question,
// grounded in the retrieved textbook excerpts. Free-form questions carry no
// chapter; the chapter line is omitted rather than filled with a placeholder.
func AnswerPrompt(chapter, contextText, question string) CompletionRequest {
	system := fmt.Sprintf(`%s

Using the following textbook excerpts, answer the question clearly and completely in BOTH English AND Swahili.

%s`, tutorRole, bilingualFormat)

	var user strings.Builder
	if chapter != "" {
		fmt.Fprintf(&user, "Chapter: %s\n", chapter)
	}
	fmt.Fprintf(&user, "Textbook Content:\n%s\n\nQuestion: %s",
		contextOrNote(contextText), question)

	return CompletionRequest{System: system, User: user.String()}
}

// SummaryPrompt assembles the generation prompt for a full chapter summary.
func SummaryPrompt(chapter, contextText string) CompletionRequest {
	system := fmt.Sprintf(`%s

Your task is to write a complete and helpful revision summary of the chapter below, in BOTH English AND Swahili.

The summary should include:
- Clear definitions of important terms (e.g. osmosis, digestion, vitamins)
- Descriptions of processes, procedures, or stages (e.g. how digestion works)
- Examples of items, functions, or outcomes
- Lists of key components (e.g. nutrients, vitamins, organs)
- Mentions of diagrams, apparatus, or activities
- Functions or roles of major parts or systems

Be as detailed and helpful as possible.

%s`, tutorRole, bilingualFormat)

	user := fmt.Sprintf("Chapter: %s\nTextbook Content:\n%s",
		chapter, contextOrNote(contextText))

	return CompletionRequest{System: system, User: user}
}

// TranslationPrompt asks for the Swahili rendering of a single question.
func TranslationPrompt(question string) CompletionRequest {
	return CompletionRequest{
		System: "You are a translator. Translate the following English question to Swahili. " +
			"Return ONLY the Swahili translation, nothing else.",
		User: question,
	}
}

// BuildContext joins selected passages into the prompt context block,
// dropping passages shorter than minLen and packing the longest passages
// first until the character budget is spent.
func BuildContext(passages []Passage, minLen, budget int) string {
	usable := make([]Passage, 0, len(passages))
	for _, p := range passages {
		if len(strings.TrimSpace(p.Text)) > minLen {
			usable = append(usable, p)
		}
	}

	// Longest passages carry the most material per retrieval slot.
	for i := 1; i < len(usable); i++ {
		for j := i; j > 0 && len(usable[j].Text) > len(usable[j-1].Text); j-- {
			usable[j], usable[j-1] = usable[j-1], usable[j]
		}
	}

	var b strings.Builder
	for _, p := range usable {
		if budget > 0 && b.Len()+len(p.Text) > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(p.Text))
	}
	return b.String()
}

func contextOrNote(contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		return noContextNote
	}
	return contextText
}
