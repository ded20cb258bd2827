package mwalimu

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Generator is the interface for the external text-generation service.
type Generator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Retriever is the interface for the external similarity-search index.
type Retriever interface {
	Search(ctx context.Context, query string, filter Filter, topK int) ([]Passage, error)
}

// QueryCache is the interface for answer caching. Implementations must be
// safe for concurrent use; the batch fan-out path calls Get and Set from
// multiple goroutines.
type QueryCache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Clear() error
	Len() int
}

// Observer receives cache and upstream telemetry from the Tutor. All
// methods must be safe for concurrent use.
type Observer interface {
	CacheLookup(mode Mode, hit bool)
	UpstreamCall(service string, d time.Duration, err error)
}

// Budgets holds the per-mode retrieval document budgets and the prompt
// context packing limits. Broad chapter summaries get large budgets; a
// single focused question gets a small one.
type Budgets struct {
	SummarizeDocs int // Content passages fetched for a chapter summary
	RevisionDocs  int // Revision passages fetched for question extraction
	ContentDocs   int // Shared content passages fetched for a revision batch
	AskDocs       int // Content passages fetched for a free-form question
	QuestionDocs  int // Content passages fetched per revision sub-question
	MinPassageLen int // Passages at or below this length are discarded
	ContextChars  int // Character budget for the assembled prompt context
}

// DefaultBudgets returns the retrieval budgets tuned for the curriculum
// corpus.
func DefaultBudgets() Budgets {
	return Budgets{
		SummarizeDocs: 200,
		RevisionDocs:  300,
		ContentDocs:   300,
		AskDocs:       6,
		QuestionDocs:  4,
		MinPassageLen: 50,
		ContextChars:  40000,
	}
}

// answerUnavailable fills the English half of a revision item whose
// generation failed. Sibling items are unaffected.
const answerUnavailable = "The tutor could not answer this question right now. Please try again later."

// modeTranslate namespaces cached Swahili question translations. It is not
// a request mode; it only exists as a cache-key prefix.
const modeTranslate Mode = "translate"

// Tutor orchestrates retrieval, generation, and caching for tutoring
// requests. It owns no persistent state of its own; the injected QueryCache
// is the only shared mutable resource.
type Tutor struct {
	retriever Retriever
	generator Generator
	cache     QueryCache
	logger    *slog.Logger
	observer  Observer

	budgets       Budgets
	callTimeout   time.Duration
	maxConcurrent int

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

// inflightCall coalesces concurrent identical requests: followers wait for
// the leader's result instead of issuing duplicate upstream calls.
type inflightCall struct {
	done chan struct{}
	val  string
	err  error
}

// TutorOption is a functional option for configuring the Tutor.
type TutorOption func(*Tutor)

// WithCache sets the query cache.
func WithCache(cache QueryCache) TutorOption {
	return func(t *Tutor) {
		t.cache = cache
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) TutorOption {
	return func(t *Tutor) {
		t.logger = logger
	}
}

// WithObserver sets the telemetry observer.
func WithObserver(obs Observer) TutorOption {
	return func(t *Tutor) {
		t.observer = obs
	}
}

// WithBudgets overrides the retrieval budgets.
func WithBudgets(b Budgets) TutorOption {
	return func(t *Tutor) {
		t.budgets = b
	}
}

// WithCallTimeout bounds each individual upstream call.
func WithCallTimeout(d time.Duration) TutorOption {
	return func(t *Tutor) {
		if d > 0 {
			t.callTimeout = d
		}
	}
}

// WithMaxConcurrent caps the number of simultaneous generation calls in the
// batch fan-out path.
func WithMaxConcurrent(n int) TutorOption {
	return func(t *Tutor) {
		if n > 0 {
			t.maxConcurrent = n
		}
	}
}

// NewTutor creates a Tutor over the given retrieval and generation clients.
func NewTutor(retriever Retriever, generator Generator, opts ...TutorOption) *Tutor {
	t := &Tutor{
		retriever:     retriever,
		generator:     generator,
		logger:        slog.Default(),
		budgets:       DefaultBudgets(),
		callTimeout:   60 * time.Second,
		maxConcurrent: 5,
		inflight:      make(map[string]*inflightCall),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Summarize produces a bilingual revision summary of a chapter.
func (t *Tutor) Summarize(ctx context.Context, chapter string) (BilingualAnswer, error) {
	chapter = strings.TrimSpace(chapter)
	if chapter == "" {
		return BilingualAnswer{}, &ValidationError{Field: "chapter", Message: "must not be empty"}
	}

	key := Fingerprint(ModeSummarize, chapter)
	if ans, ok := t.cachedAnswer(ModeSummarize, key); ok {
		return ans, nil
	}

	raw, err := t.coalesce(key, func() (string, error) {
		if cached, ok := t.cacheGet(key); ok {
			return cached, nil
		}

		passages, err := t.retrieve(ctx, "content chapter "+chapter,
			Filter{Type: PassageContent, Chapters: ChapterVariants(chapter)},
			t.budgets.SummarizeDocs)
		if err != nil {
			return "", err
		}

		contextText := BuildContext(passages, t.budgets.MinPassageLen, t.budgets.ContextChars)
		out, err := t.generate(ctx, SummaryPrompt(chapter, contextText))
		if err != nil {
			return "", err
		}

		return t.cachePut(key, ParseBilingual(out))
	})
	if err != nil {
		return BilingualAnswer{}, err
	}
	return decodeAnswer(raw)
}

// Ask answers a single free-form question against the indexed corpus.
func (t *Tutor) Ask(ctx context.Context, question string) (BilingualAnswer, error) {
	normalized := NormalizeQuestion(question)
	if normalized == "" {
		return BilingualAnswer{}, &ValidationError{Field: "question", Message: "must not be empty"}
	}

	key := Fingerprint(ModeAsk, normalized)
	if ans, ok := t.cachedAnswer(ModeAsk, key); ok {
		return ans, nil
	}

	raw, err := t.coalesce(key, func() (string, error) {
		if cached, ok := t.cacheGet(key); ok {
			return cached, nil
		}

		passages, err := t.retrieve(ctx, normalized,
			Filter{Type: PassageContent}, t.budgets.AskDocs)
		if err != nil {
			return "", err
		}

		contextText := BuildContext(passages, 0, t.budgets.ContextChars)
		out, err := t.generate(ctx, AnswerPrompt("", contextText, normalized))
		if err != nil {
			return "", err
		}

		return t.cachePut(key, ParseBilingual(out))
	})
	if err != nil {
		return BilingualAnswer{}, err
	}
	return decodeAnswer(raw)
}

// retrieve performs one bounded retrieval call and reports it to the
// observer.
func (t *Tutor) retrieve(ctx context.Context, query string, filter Filter, topK int) ([]Passage, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.callTimeout)
	defer cancel()

	start := time.Now()
	passages, err := t.retriever.Search(callCtx, query, filter, topK)
	t.observe("retriever", time.Since(start), err)
	if err != nil {
		t.logger.Warn("retrieval failed", slog.String("filter_type", filter.Type), slog.Any("error", err))
		return nil, err
	}
	return passages, nil
}

// generate performs one bounded generation call and reports it to the
// observer.
func (t *Tutor) generate(ctx context.Context, req CompletionRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.callTimeout)
	defer cancel()

	start := time.Now()
	out, err := t.generator.Complete(callCtx, req)
	t.observe("generator", time.Since(start), err)
	if err != nil {
		t.logger.Warn("generation failed", slog.Any("error", err))
		return "", err
	}
	return out, nil
}

// coalesce runs fn once per key; concurrent callers for the same key block
// on the leader's result instead of issuing duplicate upstream calls.
func (t *Tutor) coalesce(key string, fn func() (string, error)) (string, error) {
	t.mu.Lock()
	if c, ok := t.inflight[key]; ok {
		t.mu.Unlock()
		<-c.done
		return c.val, c.err
	}
	c := &inflightCall{done: make(chan struct{})}
	t.inflight[key] = c
	t.mu.Unlock()

	c.val, c.err = fn()

	t.mu.Lock()
	delete(t.inflight, key)
	t.mu.Unlock()
	close(c.done)

	return c.val, c.err
}

// cacheGet reads a raw cached value. Any cache malfunction degrades to a
// miss and never reaches the caller.
func (t *Tutor) cacheGet(key string) (string, bool) {
	if t.cache == nil {
		return "", false
	}
	return t.cache.Get(key)
}

// cachedAnswer resolves a cached BilingualAnswer and records the lookup.
func (t *Tutor) cachedAnswer(mode Mode, key string) (BilingualAnswer, bool) {
	raw, ok := t.cacheGet(key)
	if ok {
		ans, err := decodeAnswer(raw)
		if err != nil {
			// Corrupt entry: treat as a miss.
			ok = false
		} else {
			t.lookup(mode, true)
			return ans, true
		}
	}
	t.lookup(mode, ok)
	return BilingualAnswer{}, false
}

// cachePut stores a successfully generated value and returns its raw form.
// Cache failures are logged and swallowed; they never fail the request.
func (t *Tutor) cachePut(key string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", &CacheError{Message: "encode value", Cause: err}
	}
	raw := string(data)
	if t.cache != nil {
		if err := t.cache.Set(key, raw); err != nil {
			t.logger.Debug("cache set failed", slog.Any("error", err))
		}
	}
	return raw, nil
}

func (t *Tutor) lookup(mode Mode, hit bool) {
	if t.observer != nil {
		t.observer.CacheLookup(mode, hit)
	}
}

func (t *Tutor) observe(service string, d time.Duration, err error) {
	if t.observer != nil {
		t.observer.UpstreamCall(service, d, err)
	}
}

func decodeAnswer(raw string) (BilingualAnswer, error) {
	var ans BilingualAnswer
	if err := json.Unmarshal([]byte(raw), &ans); err != nil {
		return BilingualAnswer{}, &CacheError{Message: "decode answer", Cause: err}
	}
	if strings.TrimSpace(ans.Swahili) == "" {
		ans.Swahili = SwahiliFallback
	}
	return ans, nil
}
