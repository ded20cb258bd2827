package mwalimu

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var revisionQuestions = []string{
	"1. What is osmosis and why does it matter?",
	"2. Describe the role of enzymes in digestion.",
	"3. Name the parts of a flowering plant.",
}

func revisionPassages(questions []string) []Passage {
	ps := make([]Passage, 0, len(questions))
	for _, q := range questions {
		ps = append(ps, Passage{Text: q, Chapter: "3.5", ChapterRoot: "3", Type: PassageRevision, Score: 0.9})
	}
	return ps
}

func revisionFixture(questions []string) *stubRetriever {
	return &stubRetriever{passages: map[string][]Passage{
		PassageRevision: revisionPassages(questions),
		PassageContent:  contentPassages(),
	}}
}

// batchReply answers translation requests immediately and delegates answer
// requests to fn, keyed by the question text found in the prompt.
func batchReply(fn func(req CompletionRequest) (string, error)) func(req CompletionRequest) (string, error) {
	return func(req CompletionRequest) (string, error) {
		if isTranslation(req) {
			return "Swali: " + req.User, nil
		}
		return fn(req)
	}
}

func TestRevision_Validation(t *testing.T) {
	tutor := NewTutor(&stubRetriever{}, &stubGenerator{})

	_, err := tutor.Revision(context.Background(), "")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRevision_AnswersAllQuestionsInOrder(t *testing.T) {
	retriever := revisionFixture(revisionQuestions)

	// Later questions answer faster, so completion order is the reverse of
	// input order.
	gen := &stubGenerator{reply: batchReply(func(req CompletionRequest) (string, error) {
		switch {
		case strings.Contains(req.User, "osmosis"):
			time.Sleep(60 * time.Millisecond)
		case strings.Contains(req.User, "enzymes"):
			time.Sleep(30 * time.Millisecond)
		}
		return bilingualStub("Answer."), nil
	})}
	tutor := NewTutor(retriever, gen, WithCache(newMapCache()))

	items, err := tutor.Revision(context.Background(), "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != len(revisionQuestions) {
		t.Fatalf("expected %d items, got %d", len(revisionQuestions), len(items))
	}
	for i, q := range revisionQuestions {
		if items[i].QuestionText != q {
			t.Errorf("item %d question = %q, want %q", i, items[i].QuestionText, q)
		}
		if items[i].SwahiliQuestion == "" {
			t.Errorf("item %d missing swahili question", i)
		}
		if items[i].Answer.English == "" || items[i].Answer.Swahili == "" {
			t.Errorf("item %d incomplete answer: %+v", i, items[i].Answer)
		}
	}
}

func TestRevision_PartialFailure(t *testing.T) {
	retriever := revisionFixture(revisionQuestions)
	gen := &stubGenerator{reply: batchReply(func(req CompletionRequest) (string, error) {
		if strings.Contains(req.User, "enzymes") {
			return "", &UpstreamError{Service: "openai", Message: "timeout", Retryable: true}
		}
		return bilingualStub("Answer."), nil
	})}
	cache := newMapCache()
	tutor := NewTutor(retriever, gen, WithCache(cache))

	items, err := tutor.Revision(context.Background(), "3")
	if err != nil {
		t.Fatalf("a failed sub-question must not fail the batch: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	failed := items[1]
	if failed.Answer.English != answerUnavailable {
		t.Errorf("failed item english = %q, want unavailable text", failed.Answer.English)
	}
	if failed.Answer.Swahili != SwahiliFallback {
		t.Errorf("failed item swahili = %q, want fallback", failed.Answer.Swahili)
	}
	if failed.QuestionText != revisionQuestions[1] {
		t.Errorf("failed item question = %q", failed.QuestionText)
	}
	for _, i := range []int{0, 2} {
		if items[i].Answer.English != "Answer." {
			t.Errorf("sibling item %d affected: %+v", i, items[i].Answer)
		}
	}

	// Incomplete batches stay uncached so the next request retries.
	if _, ok := cache.Get(Fingerprint(ModeRevision, "3")); ok {
		t.Error("incomplete batch must not be cached")
	}
}

func TestRevision_CachedBatch(t *testing.T) {
	retriever := revisionFixture(revisionQuestions)
	gen := &stubGenerator{reply: batchReply(func(req CompletionRequest) (string, error) {
		return bilingualStub("Answer."), nil
	})}
	tutor := NewTutor(retriever, gen, WithCache(newMapCache()))

	first, err := tutor.Revision(context.Background(), "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsAfterFirst := gen.callCount()

	second, err := tutor.Revision(context.Background(), "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.callCount() != callsAfterFirst {
		t.Errorf("cached batch must issue no generation calls: %d vs %d", gen.callCount(), callsAfterFirst)
	}
	if len(second) != len(first) {
		t.Fatalf("cached batch size %d, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("item %d differs after cache round-trip: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRevision_SubAnswersSharedWithAsk(t *testing.T) {
	retriever := revisionFixture(revisionQuestions)
	gen := &stubGenerator{reply: batchReply(func(req CompletionRequest) (string, error) {
		return bilingualStub("Answer."), nil
	})}
	tutor := NewTutor(retriever, gen, WithCache(newMapCache()))

	if _, err := tutor.Revision(context.Background(), "3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsAfterBatch := gen.callCount()

	// A single-question request for a batch question reuses its cached answer.
	if _, err := tutor.Ask(context.Background(), revisionQuestions[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.callCount() != callsAfterBatch {
		t.Errorf("ask should reuse the cached sub-answer, calls %d vs %d", gen.callCount(), callsAfterBatch)
	}
}

func TestRevision_ConcurrencyCap(t *testing.T) {
	questions := []string{
		"1. What is osmosis and why does it matter?",
		"2. Describe the role of enzymes in digestion.",
		"3. Name the parts of a flowering plant.",
		"4. Explain how plants absorb water from soil.",
		"5. What is the function of the cell membrane?",
		"6. Describe the stages of the carbon cycle.",
	}
	retriever := revisionFixture(questions)

	var current, peak atomic.Int32
	gen := &stubGenerator{reply: func(req CompletionRequest) (string, error) {
		c := current.Add(1)
		for {
			p := peak.Load()
			if c <= p || peak.CompareAndSwap(p, c) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		if isTranslation(req) {
			return "Swali: " + req.User, nil
		}
		return bilingualStub("Answer."), nil
	}}
	tutor := NewTutor(retriever, gen, WithMaxConcurrent(2))

	items, err := tutor.Revision(context.Background(), "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != len(questions) {
		t.Fatalf("expected %d items, got %d", len(questions), len(items))
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("observed %d concurrent generations, cap is 2", got)
	}
}

func TestRevision_NoQuestionsFound(t *testing.T) {
	retriever := &stubRetriever{passages: map[string][]Passage{
		PassageRevision: {{Text: "Introduction", Type: PassageRevision}},
		PassageContent:  contentPassages(),
	}}
	gen := &stubGenerator{}
	tutor := NewTutor(retriever, gen)

	items, err := tutor.Revision(context.Background(), "9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
	if gen.callCount() != 0 {
		t.Errorf("no questions means no generation calls, got %d", gen.callCount())
	}
}

func TestRevision_RetrievalFailure(t *testing.T) {
	retriever := &stubRetriever{err: &UpstreamError{Service: "pinecone", Message: "unreachable", Retryable: true}}
	tutor := NewTutor(retriever, &stubGenerator{})

	_, err := tutor.Revision(context.Background(), "3")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}
