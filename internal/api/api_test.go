package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"

	"github.com/elimu-labs/mwalimu"
	"github.com/elimu-labs/mwalimu/cache"
	"github.com/elimu-labs/mwalimu/internal/metrics"
)

// stubTutor serves canned answers so handler behavior can be tested without
// the orchestration stack.
type stubTutor struct {
	summarize func(chapter string) (mwalimu.BilingualAnswer, error)
	ask       func(question string) (mwalimu.BilingualAnswer, error)
	revision  func(chapter string) ([]mwalimu.RevisionItem, error)
}

func (s *stubTutor) Summarize(ctx context.Context, chapter string) (mwalimu.BilingualAnswer, error) {
	return s.summarize(chapter)
}

func (s *stubTutor) Ask(ctx context.Context, question string) (mwalimu.BilingualAnswer, error) {
	return s.ask(question)
}

func (s *stubTutor) Revision(ctx context.Context, chapter string) ([]mwalimu.RevisionItem, error) {
	return s.revision(chapter)
}

func happyTutor() *stubTutor {
	answer := mwalimu.BilingualAnswer{English: "An answer.", Swahili: "Jibu."}
	return &stubTutor{
		summarize: func(string) (mwalimu.BilingualAnswer, error) { return answer, nil },
		ask:       func(string) (mwalimu.BilingualAnswer, error) { return answer, nil },
		revision: func(string) ([]mwalimu.RevisionItem, error) {
			return []mwalimu.RevisionItem{
				{QuestionText: "1. What is osmosis?", SwahiliQuestion: "1. Osmosisi ni nini?", Answer: answer},
			}, nil
		},
	}
}

func newTestAPI(t *testing.T, tutor Tutor, c cache.Cache) *httpexpect.Expect {
	t.Helper()
	h := NewHandler(Options{
		Tutor:         tutor,
		Cache:         c,
		TTL:           600 * time.Second,
		Model:         "gpt-4o-mini",
		MaxConcurrent: 5,
	})
	srv := httptest.NewServer(NewRouter(h, metrics.NewRecorder(nil)))
	t.Cleanup(srv.Close)
	return httpexpect.Default(t, srv.URL)
}

func TestSummarize(t *testing.T) {
	e := newTestAPI(t, happyTutor(), nil)

	obj := e.POST("/summarize").
		WithJSON(map[string]string{"chapter": "3"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	obj.HasValue("mode", "summarize")
	obj.HasValue("chapter", "3")
	obj.Value("response").Object().HasValue("english", "An answer.")
	obj.Value("response").Object().HasValue("swahili", "Jibu.")
}

func TestSummarize_MissingChapter(t *testing.T) {
	e := newTestAPI(t, happyTutor(), nil)

	e.POST("/summarize").
		WithJSON(map[string]string{}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().
		ContainsKey("error")
}

func TestSummarize_MalformedBody(t *testing.T) {
	e := newTestAPI(t, happyTutor(), nil)

	e.POST("/summarize").
		WithText("{not json").
		Expect().
		Status(http.StatusBadRequest)
}

func TestAsk(t *testing.T) {
	e := newTestAPI(t, happyTutor(), nil)

	obj := e.POST("/ask").
		WithJSON(map[string]string{"question": "What is osmosis?"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	obj.HasValue("mode", "ask")
	obj.HasValue("question_text", "What is osmosis?")
	obj.Value("response").Object().ContainsKey("swahili")
}

func TestAsk_UpstreamFailure(t *testing.T) {
	tutor := happyTutor()
	tutor.ask = func(string) (mwalimu.BilingualAnswer, error) {
		return mwalimu.BilingualAnswer{}, &mwalimu.UpstreamError{
			Service: "openai", Message: "quota exceeded",
		}
	}
	e := newTestAPI(t, tutor, nil)

	e.POST("/ask").
		WithJSON(map[string]string{"question": "What is osmosis?"}).
		Expect().
		Status(http.StatusBadGateway).
		JSON().Object().
		HasValue("error", "upstream service unavailable")
}

func TestAsk_ValidationError(t *testing.T) {
	tutor := happyTutor()
	tutor.ask = func(string) (mwalimu.BilingualAnswer, error) {
		return mwalimu.BilingualAnswer{}, &mwalimu.ValidationError{Field: "question", Message: "must not be empty"}
	}
	e := newTestAPI(t, tutor, nil)

	e.POST("/ask").
		WithJSON(map[string]string{"question": "   "}).
		Expect().
		Status(http.StatusBadRequest)
}

func TestAsk_InternalError(t *testing.T) {
	tutor := happyTutor()
	tutor.ask = func(string) (mwalimu.BilingualAnswer, error) {
		return mwalimu.BilingualAnswer{}, errors.New("unexpected")
	}
	e := newTestAPI(t, tutor, nil)

	e.POST("/ask").
		WithJSON(map[string]string{"question": "What is osmosis?"}).
		Expect().
		Status(http.StatusInternalServerError).
		JSON().Object().
		HasValue("error", "internal error")
}

func TestRevision(t *testing.T) {
	e := newTestAPI(t, happyTutor(), nil)

	obj := e.POST("/revision").
		WithJSON(map[string]string{"chapter": "3"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	obj.HasValue("mode", "revision")
	questions := obj.Value("questions").Array()
	questions.Length().IsEqual(1)
	first := questions.Value(0).Object()
	first.HasValue("question_text", "1. What is osmosis?")
	first.HasValue("swahili_question", "1. Osmosisi ni nini?")
	first.Value("answer").Object().HasValue("english", "An answer.")
}

func TestRevision_EmptyBatchIsArray(t *testing.T) {
	tutor := happyTutor()
	tutor.revision = func(string) ([]mwalimu.RevisionItem, error) {
		return []mwalimu.RevisionItem{}, nil
	}
	e := newTestAPI(t, tutor, nil)

	// An empty batch must serialize as [] rather than null.
	e.POST("/revision").
		WithJSON(map[string]string{"chapter": "9"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		Value("questions").Array().Length().IsEqual(0)
}

func TestCacheEndpoints(t *testing.T) {
	c := cache.NewInMemoryCache(600)
	c.Set("k1", "v1")
	c.Set("k2", "v2")
	e := newTestAPI(t, happyTutor(), c)

	stats := e.GET("/cache/stats").
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	stats.HasValue("cached_queries", 2)
	stats.HasValue("ttl_seconds", 600)

	e.POST("/cache/clear").
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("status", "cache cleared")

	if c.Len() != 0 {
		t.Errorf("cache should be empty after clear, len = %d", c.Len())
	}
}

func TestHealthAndStatus(t *testing.T) {
	e := newTestAPI(t, happyTutor(), nil)

	e.GET("/health").
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("status", "ok")

	status := e.GET("/status").
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	status.HasValue("status", "healthy")
	status.HasValue("model", "gpt-4o-mini")
	status.HasValue("max_parallel_questions", 5)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestAPI(t, happyTutor(), nil)

	e.GET("/health").Expect().Status(http.StatusOK)
	body := e.GET("/metrics").
		Expect().
		Status(http.StatusOK).
		Body()
	body.Contains("mwalimu_http_requests_total")
}

func TestMethodNotAllowed(t *testing.T) {
	e := newTestAPI(t, happyTutor(), nil)

	e.GET("/summarize").
		Expect().
		Status(http.StatusMethodNotAllowed)
}
