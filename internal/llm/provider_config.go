package llm

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"proposal-generator/internal/config"
)

// AuthMode says where the API credential is placed on the outbound request
type AuthMode string

const (
	AuthHeaderKey   AuthMode = "header-key"
	AuthQueryKey    AuthMode = "query-key"
	AuthBearerToken AuthMode = "bearer-token"
)

// BodyShape selects the request/response schema of the provider
type BodyShape string

const (
	ShapeAnthropic  BodyShape = "anthropic"
	ShapeGemini     BodyShape = "gemini"
	ShapeOpenAIChat BodyShape = "openai-chat"
)

const (
	defaultAuthHeader = "x-api-key"
	queryKeyParam     = "key"
)

// ProviderConfig is the immutable description of the selected provider.
// It is built once at start-up and shared read-only by all requests.
type ProviderConfig struct {
	Name         string
	Endpoint     string
	AuthMode     AuthMode
	AuthHeader   string
	APIKeyEnv    string
	APIKey       string
	BodyShape    BodyShape
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	ExtraHeaders map[string]string
}

// NewProviderConfig builds the provider description from loaded configuration
func NewProviderConfig(cfg *config.Config) ProviderConfig {
	headers := make(map[string]string, len(cfg.LLM.ExtraHeaders))
	for k, v := range cfg.LLM.ExtraHeaders {
		headers[k] = v
	}

	return ProviderConfig{
		Name:         cfg.LLM.Provider,
		Endpoint:     cfg.LLM.Endpoint,
		AuthMode:     AuthMode(cfg.LLM.AuthMode),
		AuthHeader:   cfg.LLM.AuthHeader,
		APIKeyEnv:    cfg.LLM.APIKeyEnv,
		APIKey:       cfg.LLM.APIKey,
		BodyShape:    BodyShape(cfg.LLM.BodyShape),
		Model:        cfg.LLM.Model,
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		Timeout:      cfg.LLM.Timeout,
		ExtraHeaders: headers,
	}
}

// HasCredential reports whether an API key is available
func (p ProviderConfig) HasCredential() bool {
	return p.APIKey != ""
}

// KeyName is the name operators should set to supply the credential
func (p ProviderConfig) KeyName() string {
	if p.APIKeyEnv != "" {
		return p.APIKeyEnv
	}
	return "LLM_API_KEY"
}

// Validate checks the static parts of the configuration
func (p ProviderConfig) Validate() error {
	if p.Endpoint == "" {
		return fmt.Errorf("provider %s: endpoint is required", p.Name)
	}
	switch p.AuthMode {
	case AuthHeaderKey, AuthQueryKey, AuthBearerToken:
	default:
		return fmt.Errorf("provider %s: unsupported auth mode %q", p.Name, p.AuthMode)
	}
	switch p.BodyShape {
	case ShapeAnthropic, ShapeGemini, ShapeOpenAIChat:
	default:
		return fmt.Errorf("provider %s: unsupported body shape %q", p.Name, p.BodyShape)
	}
	return nil
}

// NewJSONRequest creates a POST request to endpoint with a JSON payload,
// the configured extra headers and the credential in place.
func (p ProviderConfig) NewJSONRequest(ctx context.Context, endpoint string, payload []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", p.Name, err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.ExtraHeaders {
		req.Header.Set(k, v)
	}

	if err := p.Authorize(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Authorize places the API key on the request according to AuthMode
func (p ProviderConfig) Authorize(req *http.Request) error {
	switch p.AuthMode {
	case AuthHeaderKey:
		header := p.AuthHeader
		if header == "" {
			header = defaultAuthHeader
		}
		req.Header.Set(header, p.APIKey)
	case AuthQueryKey:
		q := req.URL.Query()
		q.Set(queryKeyParam, p.APIKey)
		req.URL.RawQuery = q.Encode()
	case AuthBearerToken:
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	default:
		return fmt.Errorf("provider %s: unsupported auth mode %q", p.Name, p.AuthMode)
	}
	return nil
}
