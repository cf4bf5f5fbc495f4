package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/notebook/internal/summarizer"
)

var _ summarizer.Recorder = (*Exporter)(nil)

func TestHandlerExposesCollectors(t *testing.T) {
	e := New()
	e.ObserveLLM("summarize", summarizer.FailureCredentials, 20*time.Millisecond)
	e.ObserveLLM("analyze", summarizer.FailureNone, time.Second)
	e.ObserveUpload("ok")
	e.SetSources(3)

	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`notebook_llm_requests_total{outcome="credentials",purpose="summarize"} 1`,
		`notebook_llm_requests_total{outcome="ok",purpose="analyze"} 1`,
		`notebook_uploads_total{status="ok"} 1`,
		`notebook_sources 3`,
		`notebook_llm_latency_seconds_count{purpose="summarize"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestWatchGauges(t *testing.T) {
	e := New()
	clients := 2
	e.WatchClients(func() int { return clients })
	e.WatchIndex(func(kind string) (int, error) {
		if kind == "note" {
			return 0, errors.New("closed")
		}
		return 5, nil
	}, "source", "note")
	clients = 4

	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	for _, want := range []string{
		`notebook_event_clients 4`,
		`notebook_indexed_documents{kind="source"} 5`,
		`notebook_indexed_documents{kind="note"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
