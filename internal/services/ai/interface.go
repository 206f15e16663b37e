// File: internal/services/ai/interface.go
package ai

import "context"

// ProviderStatus represents AI provider health.
type ProviderStatus struct {
	IsHealthy bool
	Message   string
}

// CompletionProvider handles chat completions. The system prompt
// carries the assembled reading context; the user prompt is the
// reader's question verbatim.
type CompletionProvider interface {
	GetCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, onDelta func(string) error) error
	HealthCheck(ctx context.Context) error
}

// Provider combines completions with status reporting.
type Provider interface {
	CompletionProvider
	GetStatus(ctx context.Context) ProviderStatus
}
