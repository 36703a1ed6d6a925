package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

const DefaultMaxTokens = 1000

type Completer interface {
	Complete(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// LLMCompleter sends single prompts to a langchaingo model with a fixed token ceiling.
type LLMCompleter struct {
	llm       llms.Model
	maxTokens int
}

func NewLLMCompleter(llm llms.Model, maxTokens int) *LLMCompleter {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &LLMCompleter{
		llm:       llm,
		maxTokens: maxTokens,
	}
}

func (c *LLMCompleter) Complete(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	opts := append([]llms.CallOption{llms.WithMaxTokens(c.maxTokens)}, options...)

	completion, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	return completion, nil
}
