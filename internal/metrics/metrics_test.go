package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimu-labs/mwalimu"
)

func TestRecorder_ObserveRequest(t *testing.T) {
	rec := NewRecorder(nil)

	rec.ObserveRequest("ask", http.StatusOK, 5*time.Millisecond)
	rec.ObserveRequest("ask", http.StatusOK, 7*time.Millisecond)
	rec.ObserveRequest("ask", http.StatusBadGateway, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.requests.WithLabelValues("ask", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("ask", "502")))
}

func TestRecorder_CacheLookup(t *testing.T) {
	rec := NewRecorder(nil)

	rec.CacheLookup(mwalimu.ModeAsk, true)
	rec.CacheLookup(mwalimu.ModeAsk, false)
	rec.CacheLookup(mwalimu.ModeAsk, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.cacheLookups.WithLabelValues("ask", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.cacheLookups.WithLabelValues("ask", "miss")))
}

func TestRecorder_UpstreamCall(t *testing.T) {
	rec := NewRecorder(nil)

	rec.UpstreamCall("generator", 10*time.Millisecond, nil)
	rec.UpstreamCall("generator", 10*time.Millisecond, errors.New("boom"))
	rec.UpstreamCall("retriever", 5*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.upstreamCalls.WithLabelValues("generator", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.upstreamCalls.WithLabelValues("generator", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.upstreamCalls.WithLabelValues("retriever", "ok")))
}

func TestRecorder_Handler(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveRequest("health", http.StatusOK, time.Millisecond)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRecorder_SeparateRegistries(t *testing.T) {
	// Two recorders must not collide on metric registration.
	assert.NotPanics(t, func() {
		NewRecorder(nil)
		NewRecorder(nil)
	})
}
