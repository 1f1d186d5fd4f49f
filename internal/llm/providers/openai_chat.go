package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"proposal-generator/internal/llm"
)

// OpenAIChatProvider speaks the OpenAI chat completions schema (Groq and
// other compatible endpoints)
type OpenAIChatProvider struct {
	config llm.ProviderConfig
}

// NewOpenAIChatProvider creates a new OpenAI-compatible provider instance
func NewOpenAIChatProvider(cfg llm.ProviderConfig) *OpenAIChatProvider {
	return &OpenAIChatProvider{config: cfg}
}

// Name returns the name of the LLM provider
func (p *OpenAIChatProvider) Name() string {
	return p.config.Name
}

// BuildRequest creates a chat completion request with one user message
func (p *OpenAIChatProvider) BuildRequest(ctx context.Context, prompt string) (*http.Request, error) {
	payload, err := json.Marshal(openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.config.MaxTokens,
		Temperature: float32(p.config.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat completion request: %w", err)
	}

	return p.config.NewJSONRequest(ctx, p.config.Endpoint, payload)
}

// ParseResponse returns choices[0].message.content
func (p *OpenAIChatProvider) ParseResponse(body []byte) (string, error) {
	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUnexpectedShape, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", llm.ErrUnexpectedShape)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty message content", llm.ErrUnexpectedShape)
	}

	return content, nil
}
