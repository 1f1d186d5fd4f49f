package providers

import (
	"fmt"

	"proposal-generator/internal/llm"
)

// NewProvider creates the adapter matching the configured body shape
func NewProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.BodyShape {
	case llm.ShapeAnthropic:
		return NewAnthropicProvider(cfg), nil
	case llm.ShapeGemini:
		return NewGeminiProvider(cfg), nil
	case llm.ShapeOpenAIChat:
		return NewOpenAIChatProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported body shape: %s", cfg.BodyShape)
	}
}

// SupportedShapes returns the request body shapes an adapter exists for
func SupportedShapes() []llm.BodyShape {
	return []llm.BodyShape{llm.ShapeAnthropic, llm.ShapeGemini, llm.ShapeOpenAIChat}
}
