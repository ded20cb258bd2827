package mwalimu

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// Revision answers every official revision question of a chapter. Questions
// are resolved concurrently under the configured cap; results come back in
// the original question order regardless of completion order. A failed
// sub-question degrades to a fallback item and never aborts its siblings.
func (t *Tutor) Revision(ctx context.Context, chapter string) ([]RevisionItem, error) {
	chapter = strings.TrimSpace(chapter)
	if chapter == "" {
		return nil, &ValidationError{Field: "chapter", Message: "must not be empty"}
	}

	key := Fingerprint(ModeRevision, chapter)
	if raw, ok := t.cacheGet(key); ok {
		if items, err := decodeItems(raw); err == nil {
			t.lookup(ModeRevision, true)
			return items, nil
		}
	}
	t.lookup(ModeRevision, false)

	raw, err := t.coalesce(key, func() (string, error) {
		if cached, ok := t.cacheGet(key); ok {
			return cached, nil
		}

		items, complete, err := t.resolveBatch(ctx, chapter)
		if err != nil {
			return "", err
		}

		data, merr := json.Marshal(items)
		if merr != nil {
			return "", &CacheError{Message: "encode batch", Cause: merr}
		}
		raw := string(data)

		// A batch holding any failed item is returned but not cached, so
		// the next request retries the failed questions.
		if complete && t.cache != nil {
			if serr := t.cache.Set(key, raw); serr != nil {
				t.logger.Debug("cache set failed", slog.Any("error", serr))
			}
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return decodeItems(raw)
}

// resolveBatch fetches the chapter's revision questions and answers them.
// The returned flag reports whether every item succeeded.
func (t *Tutor) resolveBatch(ctx context.Context, chapter string) ([]RevisionItem, bool, error) {
	major := MajorChapter(chapter)

	// Revision questions live at chapter <major>.5 in the corpus; fall back
	// to a prefix scan over all revision passages for the chapter.
	revPassages, err := t.retrieve(ctx, "revision questions",
		Filter{Type: PassageRevision, Chapters: []string{major + ".5"}},
		t.budgets.RevisionDocs)
	if err != nil {
		return nil, false, err
	}
	if len(revPassages) == 0 {
		all, err := t.retrieve(ctx, "chapter "+major+" questions",
			Filter{Type: PassageRevision}, t.budgets.RevisionDocs)
		if err != nil {
			return nil, false, err
		}
		for _, p := range all {
			if strings.HasPrefix(p.Chapter, major+".") {
				revPassages = append(revPassages, p)
			}
		}
	}

	questions := ExtractQuestions(revPassages)
	if len(questions) == 0 {
		t.logger.Info("no revision questions found", slog.String("chapter", chapter))
		return []RevisionItem{}, true, nil
	}

	// Shared content pool: per-question retrieval falls back to these when
	// its own focused search comes up empty or fails.
	shared, err := t.retrieve(ctx, "content chapter_root "+major,
		Filter{Type: PassageContent, ChapterRoot: major}, t.budgets.ContentDocs)
	if err != nil || len(shared) == 0 {
		shared, err = t.retrieve(ctx, "content chapter "+chapter,
			Filter{Type: PassageContent, Chapters: ChapterVariants(chapter)},
			t.budgets.ContentDocs)
		if err != nil {
			// The batch can still proceed; sub-questions retrieve their own
			// context.
			shared = nil
		}
	}

	items, complete := t.answerAll(ctx, chapter, questions, shared)
	return items, complete, nil
}

// answerAll fans the questions out under the concurrency cap and fans the
// answers back into a pre-sized slice indexed by question position, which
// preserves input order no matter when each answer completes.
func (t *Tutor) answerAll(ctx context.Context, chapter string, questions []string, shared []Passage) ([]RevisionItem, bool) {
	items := make([]RevisionItem, len(questions))
	sem := make(chan struct{}, t.maxConcurrent)
	var wg sync.WaitGroup
	var failed atomic.Bool

	for i, q := range questions {
		wg.Add(1)
		go func(idx int, question string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item, ok := t.answerQuestion(ctx, chapter, question, shared)
			if !ok {
				failed.Store(true)
			}
			items[idx] = item
		}(i, q)
	}

	wg.Wait()
	return items, !failed.Load()
}

// answerQuestion resolves one revision question: answer via the single-
// request cache/resolve contract, plus a Swahili rendering of the question
// itself. The boolean reports whether the answer was produced; question
// translation failures fall back to the English text without failing the
// item.
func (t *Tutor) answerQuestion(ctx context.Context, chapter, question string, shared []Passage) (RevisionItem, bool) {
	item := RevisionItem{
		QuestionText:    question,
		SwahiliQuestion: t.translateQuestion(ctx, question),
	}

	subKey := Fingerprint(ModeAsk, question)
	if ans, ok := t.cachedAnswer(ModeAsk, subKey); ok {
		item.Answer = ans
		return item, true
	}

	passages, err := t.retrieve(ctx, question, Filter{Type: PassageContent}, t.budgets.QuestionDocs)
	if err != nil || len(passages) == 0 {
		if len(shared) > t.budgets.QuestionDocs {
			passages = shared[:t.budgets.QuestionDocs]
		} else {
			passages = shared
		}
	}

	contextText := BuildContext(passages, 0, t.budgets.ContextChars)
	out, err := t.generate(ctx, AnswerPrompt(chapter, contextText, question))
	if err != nil {
		item.Answer = BilingualAnswer{English: answerUnavailable, Swahili: SwahiliFallback}
		return item, false
	}

	item.Answer = ParseBilingual(out)
	if _, err := t.cachePut(subKey, item.Answer); err != nil {
		t.logger.Debug("cache put failed", slog.Any("error", err))
	}
	return item, true
}

// translateQuestion produces the Swahili form of a question, caching the
// translation. Failure falls back to the English question text.
func (t *Tutor) translateQuestion(ctx context.Context, question string) string {
	key := Fingerprint(modeTranslate, question)
	if raw, ok := t.cacheGet(key); ok {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil && s != "" {
			return s
		}
	}

	out, err := t.generate(ctx, TranslationPrompt(question))
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		return question
	}

	if _, err := t.cachePut(key, out); err != nil {
		t.logger.Debug("cache put failed", slog.Any("error", err))
	}
	return out
}

func decodeItems(raw string) ([]RevisionItem, error) {
	items := []RevisionItem{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &CacheError{Message: "decode batch", Cause: err}
	}
	return items, nil
}
