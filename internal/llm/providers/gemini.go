package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"proposal-generator/internal/llm"
)

// GeminiProvider speaks the Google Generative Language generateContent API
type GeminiProvider struct {
	config llm.ProviderConfig
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiProvider creates a new Gemini provider instance
func NewGeminiProvider(cfg llm.ProviderConfig) *GeminiProvider {
	return &GeminiProvider{config: cfg}
}

// Name returns the name of the LLM provider
func (p *GeminiProvider) Name() string {
	return p.config.Name
}

// BuildRequest creates a generateContent request; "{model}" in the endpoint is
// replaced with the configured model
func (p *GeminiProvider) BuildRequest(ctx context.Context, prompt string) (*http.Request, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	if p.config.MaxTokens > 0 || p.config.Temperature > 0 {
		genConfig := &geminiGenerationConfig{MaxOutputTokens: p.config.MaxTokens}
		if p.config.Temperature > 0 {
			temperature := p.config.Temperature
			genConfig.Temperature = &temperature
		}
		body.GenerationConfig = genConfig
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode gemini request: %w", err)
	}

	endpoint := strings.ReplaceAll(p.config.Endpoint, "{model}", url.PathEscape(p.config.Model))
	return p.config.NewJSONRequest(ctx, endpoint, payload)
}

// ParseResponse joins the text parts of the first candidate with newlines
func (p *GeminiProvider) ParseResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUnexpectedShape, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: missing candidates[0].content", llm.ErrUnexpectedShape)
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text parts", llm.ErrUnexpectedShape)
	}

	return strings.Join(parts, "\n"), nil
}
