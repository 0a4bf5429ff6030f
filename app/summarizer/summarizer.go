package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/cyberguardian/app/article"
	"github.com/sashabaranov/go-openai"
)

var ErrNotConfigured = errors.New("summarizer is not configured")

// ChatClient sends one system/user exchange to a language model.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

var _ ChatClient = (*OpenAIClient)(nil)

// NewOpenAIClient returns a client for endpoint, which is the API base URL
// (for example https://api.openai.com/v1). An empty endpoint uses OpenAI.
func NewOpenAIClient(endpoint, apiKey, model string, httpClient *http.Client) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		config.BaseURL = endpoint
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.5,
		MaxTokens:   512,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completion response")
	}

	slog.Debug("Chat completion received",
		"model", c.model,
		"duration", time.Since(start),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

type Summarizer struct {
	client ChatClient
}

// New returns a summarizer backed by client. A nil client makes Run
// return ErrNotConfigured.
func New(client ChatClient) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Enabled() bool {
	return s != nil && s.client != nil
}

// Run produces the digest for one article. Transport failures are returned
// so the article stays in the queue; unusable model output is replaced by
// the fallback digest and never fails.
func (s *Summarizer) Run(ctx context.Context, item article.QueueItem) (article.Digest, error) {
	if !s.Enabled() {
		return article.Digest{}, ErrNotConfigured
	}

	raw, err := s.client.Complete(ctx, systemPrompt, BuildPrompt(item))
	if err != nil {
		return article.Digest{}, err
	}

	digest, err := Coerce(raw)
	if err != nil {
		slog.Warn("Using fallback digest", "hash", item.Hash, "error", err)
		return Fallback(item.Title, item.URL), nil
	}

	return digest, nil
}
