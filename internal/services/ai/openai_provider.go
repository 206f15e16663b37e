// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"io"

	"github.com/avast/retry-go/v4"
	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	config    *Config
	llmClient *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	llmConfig := openai.DefaultConfig(config.LLMKey)
	if config.LLMBaseURL != "" {
		llmConfig.BaseURL = config.LLMBaseURL
	}
	return &OpenAIProvider{
		config:    config,
		llmClient: openai.NewClientWithConfig(llmConfig),
	}
}

func (p *OpenAIProvider) chatRequest(systemPrompt, userPrompt string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
	}
}

// GetCompletion retries transient failures before giving up.
func (p *OpenAIProvider) GetCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var content string
	err := retry.Do(
		func() error {
			resp, err := p.llmClient.CreateChatCompletion(ctx, p.chatRequest(systemPrompt, userPrompt))
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
				return &AIError{
					Type:      ErrTypeProvider,
					Operation: "completion",
					Message:   "empty completion response",
				}
			}
			content = resp.Choices[0].Message.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.config.MaxRetries)),
		retry.Delay(p.config.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", NewProviderError("completion", "failed to create completion", err)
	}
	return content, nil
}

// StreamCompletion is not retried: deltas may already have reached the
// caller when a stream breaks mid-way.
func (p *OpenAIProvider) StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, onDelta func(string) error) error {
	stream, err := p.llmClient.CreateChatCompletionStream(ctx, p.chatRequest(systemPrompt, userPrompt))
	if err != nil {
		return NewProviderError("streaming", "failed to create stream", err)
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return NewProviderError("streaming", "stream receive error", err)
		}

		if len(response.Choices) > 0 {
			delta := response.Choices[0].Delta.Content
			if delta != "" && onDelta != nil {
				if cbErr := onDelta(delta); cbErr != nil {
					return cbErr
				}
			}
		}
	}
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	return nil
}

func (p *OpenAIProvider) GetStatus(ctx context.Context) ProviderStatus {
	return ProviderStatus{
		IsHealthy: true,
		Message:   "OpenAI provider healthy",
	}
}
