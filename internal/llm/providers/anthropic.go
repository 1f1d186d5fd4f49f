package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"proposal-generator/internal/llm"
)

// AnthropicProvider speaks the Anthropic Messages API. The SDK types are used
// for the wire format only; transport stays with the generator so the call is
// made exactly once and upstream failures pass through untouched.
type AnthropicProvider struct {
	config llm.ProviderConfig
}

// NewAnthropicProvider creates a new Anthropic provider instance
func NewAnthropicProvider(cfg llm.ProviderConfig) *AnthropicProvider {
	return &AnthropicProvider{config: cfg}
}

// Name returns the name of the LLM provider
func (p *AnthropicProvider) Name() string {
	return p.config.Name
}

// BuildRequest creates a Messages API request with a single user turn
func (p *AnthropicProvider) BuildRequest(ctx context.Context, prompt string) (*http.Request, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(p.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.config.Temperature > 0 {
		params.Temperature = anthropic.Float(p.config.Temperature)
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode anthropic request: %w", err)
	}

	return p.config.NewJSONRequest(ctx, p.config.Endpoint, payload)
}

// ParseResponse joins the text blocks of the message with newlines
func (p *AnthropicProvider) ParseResponse(body []byte) (string, error) {
	var message anthropic.Message
	if err := json.Unmarshal(body, &message); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUnexpectedShape, err)
	}

	var parts []string
	for _, block := range message.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text content blocks", llm.ErrUnexpectedShape)
	}

	return strings.Join(parts, "\n"), nil
}
