// Package summarizer turns document text into LLM summaries and note analyses.
//
// Summaries never fail to the caller: a failed completion is reported as a
// Result carrying a classified Failure whose Fallback text is stored in place
// of a real summary. Note analysis, by contrast, returns the error.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/notebook/internal/models"
)

// CombinedLabel is the title used when summarizing every document at once.
const CombinedLabel = "All Documents"

// Analysis sampling parameters.
const (
	analysisMaxTokens   = 500
	analysisTemperature = 0.7
)

// Failure classifies why a summarization did not produce text.
type Failure int

const (
	FailureNone Failure = iota
	FailureCredentials
	FailureModel
	FailureGeneric
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "ok"
	case FailureCredentials:
		return "credentials"
	case FailureModel:
		return "model"
	default:
		return "generic"
	}
}

// Fallback returns the user-facing text stored instead of a summary.
func (f Failure) Fallback() string {
	switch f {
	case FailureNone:
		return ""
	case FailureCredentials:
		return FallbackCredentials
	case FailureModel:
		return FallbackModel
	default:
		return FallbackGeneric
	}
}

// Fallback texts shown to users.
const (
	FallbackCredentials = "⚠️ OpenAI API 키가 올바르게 설정되지 않았습니다. 환경 변수를 확인해주세요."
	FallbackModel       = "⚠️ 잘못된 모델 설정입니다. OpenAI 모델 설정을 확인해주세요."
	FallbackGeneric     = "📝 요약 생성에 실패했습니다. 나중에 다시 시도해주세요."
	FallbackCombined    = "📝 통합 요약 생성에 실패했습니다"
)

// Result is the outcome of one summarization call.
type Result struct {
	Text    string
	Failure Failure
	Err     error
}

// Failed reports whether the completion did not succeed.
func (r Result) Failed() bool {
	return r.Failure != FailureNone
}

// Value returns the summary text, or the fallback text on failure.
func (r Result) Value() string {
	if r.Failed() {
		return r.Failure.Fallback()
	}
	return r.Text
}

// Request is a single chat completion request.
// Zero MaxTokens and Temperature leave the provider defaults in place.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer issues a chat completion against an LLM provider.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Recorder observes completed LLM calls.
type Recorder interface {
	ObserveLLM(purpose string, failure Failure, elapsed time.Duration)
}

// Gateway builds prompts and calls the Completer.
type Gateway struct {
	llm      Completer
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) {
		g.recorder = r
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

// NewGateway creates a Gateway around llm.
func NewGateway(llm Completer, opts ...Option) *Gateway {
	g := &Gateway{llm: llm, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Summarize summarizes text titled label. When prior is non-empty the prompt
// lists the earlier documents' summaries ahead of the new content.
func (g *Gateway) Summarize(ctx context.Context, text, label string, prior []models.PriorSummary) Result {
	start := time.Now()
	out, err := g.llm.Complete(ctx, Request{
		System: summarySystemPrompt,
		Prompt: SummaryPrompt(text, label, prior),
	})
	if err != nil {
		failure := Classify(err)
		g.observe("summarize", failure, start)
		g.logger.Error("summarize failed",
			slog.String("label", label),
			slog.String("failure", failure.String()),
			slog.String("error", err.Error()))
		return Result{Failure: failure, Err: err}
	}
	g.observe("summarize", FailureNone, start)
	return Result{Text: out}
}

// Analyze asks the LLM for insights on a note. Errors are returned as-is.
func (g *Gateway) Analyze(ctx context.Context, title, content string) (string, error) {
	start := time.Now()
	out, err := g.llm.Complete(ctx, Request{
		System:      analysisSystemPrompt,
		Prompt:      AnalysisPrompt(title, content),
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		g.observe("analyze", Classify(err), start)
		return "", fmt.Errorf("analyze note: %w", err)
	}
	g.observe("analyze", FailureNone, start)
	return out, nil
}

func (g *Gateway) observe(purpose string, failure Failure, start time.Time) {
	if g.recorder != nil {
		g.recorder.ObserveLLM(purpose, failure, time.Since(start))
	}
}

const summarySystemPrompt = `당신은 문서를 요약하는 도우미입니다. 다음 규칙을 지켜주세요:
1. 핵심 내용을 간결하게 정리하고, 앞서 올라온 문서가 있다면 그 내용과 연결해 주세요
2. 내용에 어울리는 이모지를 적절히 곁들여 주세요
3. 분량은 한 단락 정도로 유지해 주세요
4. 핵심 통찰과 문서 사이의 연관성에 집중해 주세요
5. 문서의 종류나 주제를 나타내는 이모지로 시작해 주세요`

const analysisSystemPrompt = "당신은 노트를 분석하고 통찰을 제공하는 도우미입니다."

// SummaryPrompt renders the user prompt for a summary request.
func SummaryPrompt(text, label string, prior []models.PriorSummary) string {
	var b strings.Builder
	if len(prior) > 0 {
		b.WriteString("이전에 업로드된 문서들:\n")
		for i, p := range prior {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, p.Filename, p.Summary)
		}
		b.WriteString("\n새로 통합할 문서:\n")
	}
	fmt.Fprintf(&b, "다음 문서의 제목은 '%s'입니다. 요약해주세요:\n\n%s", label, text)
	return b.String()
}

// AnalysisPrompt renders the user prompt for a note analysis.
func AnalysisPrompt(title, content string) string {
	return fmt.Sprintf("다음 노트를 분석해주세요:\n\n제목: %s\n\n내용: %s", title, content)
}
