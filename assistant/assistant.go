// Package assistant builds prompts for the completion client and falls back
// to templated answers when the client is missing, out of quota or failing.
package assistant

import (
	"context"
	"time"

	"github.com/fabfab/study-agent/llm"
	"github.com/fabfab/study-agent/logger"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 1000
	quizTemperature = 0.7
	quizMaxTokens   = 2000

	defaultTimeout = 30 * time.Second
)

type Assembler struct {
	client  llm.Client
	timeout time.Duration
	logger  *logger.Logger
}

// NewAssembler returns an assembler over client. A nil client means no
// credential is configured and every call uses the templated answers.
func NewAssembler(client llm.Client, timeout time.Duration, log *logger.Logger) *Assembler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Assembler{client: client, timeout: timeout, logger: logger.OrNop(log)}
}

// HasCredential reports whether completions are attempted at all.
func (a *Assembler) HasCredential() bool {
	return a.client != nil
}

func (a *Assembler) complete(ctx context.Context, req llm.Request) llm.Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res := a.client.Complete(ctx, req)
	if res.Status != llm.StatusSuccess {
		a.logger.Warn("completion failed", "category", res.Status.String(), "error", res.Err)
	}
	return res
}
