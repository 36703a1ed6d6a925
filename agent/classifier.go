package agent

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
)

type Classifier struct {
	completer Completer
}

func NewClassifier(completer Completer) *Classifier {
	return &Classifier{completer: completer}
}

// Classify asks the completion endpoint for the query's intent. An answer that is not the
// expected JSON fails with ErrMalformedClassification; nothing is retried.
func (c *Classifier) Classify(ctx context.Context, query string) (Intent, error) {
	prompt, err := ClassificationPrompt(query)
	if err != nil {
		return nil, err
	}

	raw, err := c.completer.Complete(ctx, prompt, llms.WithJSONMode(), llms.WithTemperature(0))
	if err != nil {
		return nil, err
	}

	slog.Info("classify result", "query", query, "raw", raw)

	return ParseIntent(raw)
}
