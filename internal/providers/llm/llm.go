package llm

import "context"

// Provider produces one completion per prompt. The summarizer calls it at
// most once per completed session.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}
