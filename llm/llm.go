package llm

import (
	"context"
	"fmt"

	"github.com/fabfab/study-agent/config"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string
	Content string
}

// Request is a single completion call: an optional system prompt, the user
// prompt and the sampling budget.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

func (r Request) messages() []Message {
	messages := make([]Message, 0, 2)
	if r.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: r.System})
	}
	return append(messages, Message{Role: RoleUser, Content: r.User})
}

// Status tags the outcome of a completion call.
type Status int

const (
	StatusSuccess Status = iota
	StatusQuotaExceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusQuotaExceeded:
		return "quota_exceeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is what a Client hands back. Text is set only on success; Err is
// set for the two failure states.
type Result struct {
	Status Status
	Text   string
	Err    error
}

func Success(text string) Result {
	return Result{Status: StatusSuccess, Text: text}
}

func QuotaExceeded(err error) Result {
	return Result{Status: StatusQuotaExceeded, Err: err}
}

func Failed(err error) Result {
	return Result{Status: StatusFailed, Err: err}
}

type Client interface {
	Complete(ctx context.Context, req Request) Result
}

type Options struct {
	Provider string
	Model    string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Referer       string
	Title         string
}

// NewClient returns the configured completion client. It returns a nil
// client and no error when the provider has no usable credential; callers
// treat that as the no-credential state.
func NewClient(cfg config.Config) (Client, error) {
	opts := Options{
		Provider:      cfg.LLM.Provider,
		Model:         cfg.LLM.Model,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Referer:       cfg.AppReferer,
		Title:         cfg.AppTitle,
	}

	switch opts.Provider {
	case config.ProviderOllama:
		return NewOllamaClient(opts), nil
	case config.ProviderOpenAI:
		if !cfg.HasLLMCredential() {
			return nil, nil
		}
		return NewOpenAIClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}
