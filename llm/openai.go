package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const quotaCode = "insufficient_quota"

type openAIClient struct {
	client *openai.Client
	model  string
}

// headerTransport adds the attribution headers OpenRouter asks for.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			clone.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(clone)
}

func NewOpenAIClient(opts Options) Client {
	cfg := openai.DefaultConfig(opts.OpenAIAPIKey)
	if opts.OpenAIBaseURL != "" {
		cfg.BaseURL = opts.OpenAIBaseURL
	}
	cfg.HTTPClient = &http.Client{
		Timeout: 120 * time.Second,
		Transport: headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": opts.Referer,
				"X-Title":      opts.Title,
			},
		},
	}

	return &openAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
	}
}

func (c *openAIClient) Complete(ctx context.Context, req Request) Result {
	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	messages := req.messages()
	chatReq.Messages = make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatReq.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return classifyOpenAIError(fmt.Errorf("create openai chat completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		return Failed(fmt.Errorf("openai chat completion returned no choices"))
	}

	return Success(resp.Choices[0].Message.Content)
}

// classifyOpenAIError separates quota exhaustion (HTTP 429 with the
// insufficient_quota code) from every other failure.
func classifyOpenAIError(err error) Result {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests && (apiErr.Type == quotaCode || fmt.Sprint(apiErr.Code) == quotaCode) {
			return QuotaExceeded(err)
		}
	}
	return Failed(err)
}
