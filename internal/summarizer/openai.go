package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned by the OpenAI completer when no key is set.
// The key is only checked when a completion is first attempted.
var ErrMissingAPIKey = errors.New("openai api key is not configured")

// ErrEmptyResponse is returned when the provider sends no choices back.
var ErrEmptyResponse = errors.New("empty response from LLM")

// OpenAIConfig configures the OpenAI-compatible completer.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds a single completion. Zero means no bound.
	Timeout time.Duration
}

// OpenAI is a Completer backed by an OpenAI-compatible chat completions API.
type OpenAI struct {
	client  *openai.Client
	apiKey  string
	model   string
	timeout time.Duration
}

// NewOpenAI creates a completer. It never contacts the provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(clientConfig),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Complete sends a system + user message pair and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if o.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	slog.Debug("LLM: chat request",
		slog.String("model", o.model),
		slog.Int("prompt_len", len(req.Prompt)),
		slog.Int("max_tokens", req.MaxTokens))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("LLM chat failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Classify maps a completion error onto a Failure using the structured
// errors returned by the OpenAI client.
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return FailureCredentials
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch code, _ := apiErr.Code.(string); {
		case code == "invalid_api_key", apiErr.HTTPStatusCode == http.StatusUnauthorized:
			return FailureCredentials
		case code == "model_not_found", apiErr.HTTPStatusCode == http.StatusNotFound:
			return FailureModel
		}
		return FailureGeneric
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return FailureCredentials
		case http.StatusNotFound:
			return FailureModel
		}
	}
	return FailureGeneric
}
