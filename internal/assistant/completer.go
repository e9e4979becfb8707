package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer runs one single-turn chat completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config holds the remote model settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient overrides the transport; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// LLMCompleter talks to an OpenAI-compatible chat completions API.
type LLMCompleter struct {
	llm   *openai.LLM
	model string
}

// NewCompleter returns a Completer for cfg. Without an API key it returns a
// completer that always reports ErrCredentialMissing, so callers never need
// to special-case the offline setup.
func NewCompleter(cfg Config) (Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return missingCredential{}, nil
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return &LLMCompleter{llm: llm, model: cfg.Model}, nil
}

// Complete implements Completer.
func (c *LLMCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	})
	if err != nil {
		if errors.Is(err, openai.ErrEmptyResponse) {
			return "", ErrEmptyResponse
		}
		return "", &UpstreamError{Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

type missingCredential struct{}

func (missingCredential) Complete(context.Context, string, string) (string, error) {
	return "", ErrCredentialMissing
}
