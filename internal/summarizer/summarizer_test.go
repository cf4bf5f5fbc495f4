package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/starford/notebook/internal/models"
)

type stubCompleter struct {
	out  string
	err  error
	reqs []Request
}

func (s *stubCompleter) Complete(_ context.Context, req Request) (string, error) {
	s.reqs = append(s.reqs, req)
	return s.out, s.err
}

type stubRecorder struct {
	purposes []string
	failures []Failure
}

func (r *stubRecorder) ObserveLLM(purpose string, failure Failure, _ time.Duration) {
	r.purposes = append(r.purposes, purpose)
	r.failures = append(r.failures, failure)
}

func TestSummarize_Success(t *testing.T) {
	llm := &stubCompleter{out: "📄 short"}
	rec := &stubRecorder{}
	g := NewGateway(llm, WithRecorder(rec))

	res := g.Summarize(context.Background(), "Hello world", "doc1.txt", nil)
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if res.Value() != "📄 short" {
		t.Errorf("value = %q", res.Value())
	}
	if len(rec.purposes) != 1 || rec.purposes[0] != "summarize" || rec.failures[0] != FailureNone {
		t.Errorf("recorder = %v %v", rec.purposes, rec.failures)
	}
	prompt := llm.reqs[0].Prompt
	if strings.Contains(prompt, "이전에 업로드된 문서들") {
		t.Errorf("prompt should not carry prior context: %q", prompt)
	}
	if !strings.Contains(prompt, "'doc1.txt'") || !strings.HasSuffix(prompt, "Hello world") {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestSummaryPrompt_PriorContextEnumerated(t *testing.T) {
	prompt := SummaryPrompt("Goodbye world", "doc2.txt", []models.PriorSummary{
		{Filename: "doc1.txt", Summary: "S1"},
		{Filename: "notes.md", Summary: "S0"},
	})
	wantPrefix := "이전에 업로드된 문서들:\n1. doc1.txt: S1\n2. notes.md: S0\n\n새로 통합할 문서:\n"
	if !strings.HasPrefix(prompt, wantPrefix) {
		t.Errorf("prompt prefix = %q", prompt)
	}
	if strings.Index(prompt, "doc1.txt") > strings.Index(prompt, "Goodbye world") {
		t.Error("prior summaries must precede the new content")
	}
}

func TestSummarize_FailureFallbacks(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"missing key", ErrMissingAPIKey, FallbackCredentials},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, FallbackCredentials},
		{"invalid key code", fmt.Errorf("wrapped: %w", &openai.APIError{Code: "invalid_api_key"}), FallbackCredentials},
		{"unknown model", &openai.APIError{HTTPStatusCode: 404, Code: "model_not_found"}, FallbackModel},
		{"request 404", &openai.RequestError{HTTPStatusCode: 404, Err: errors.New("nope")}, FallbackModel},
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, FallbackGeneric},
		{"network", errors.New("connection refused"), FallbackGeneric},
		{"empty", ErrEmptyResponse, FallbackGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGateway(&stubCompleter{err: tc.err})
			res := g.Summarize(context.Background(), "x", "a.txt", nil)
			if !res.Failed() {
				t.Fatal("expected failure")
			}
			if res.Value() != tc.want {
				t.Errorf("value = %q, want %q", res.Value(), tc.want)
			}
		})
	}
}

func TestAnalyze_ParametersAndErrors(t *testing.T) {
	llm := &stubCompleter{out: "insight"}
	g := NewGateway(llm)
	out, err := g.Analyze(context.Background(), "Title", "Body")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out != "insight" {
		t.Errorf("out = %q", out)
	}
	req := llm.reqs[0]
	if req.MaxTokens != 500 || req.Temperature != 0.7 {
		t.Errorf("params = %d/%v", req.MaxTokens, req.Temperature)
	}
	if !strings.Contains(req.Prompt, "제목: Title") || !strings.Contains(req.Prompt, "내용: Body") {
		t.Errorf("prompt = %q", req.Prompt)
	}

	g = NewGateway(&stubCompleter{err: errors.New("boom")})
	if _, err := g.Analyze(context.Background(), "t", "c"); err == nil {
		t.Error("analysis errors must surface")
	}
}

func TestOpenAI_MissingKeyIsLazy(t *testing.T) {
	c := NewOpenAI(OpenAIConfig{Model: "gpt-4.1-mini"})
	_, err := c.Complete(context.Background(), Request{Prompt: "hi"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}
