package llm

import (
	"context"
	"errors"
	"net/http"
)

// Provider adapts one LLM vendor's wire format. Implementations are stateless
// apart from their immutable ProviderConfig and are safe for concurrent use.
type Provider interface {
	// Name returns the configured provider name (e.g. "anthropic")
	Name() string

	// BuildRequest creates the outbound HTTP request carrying the prompt,
	// with credentials already placed according to the auth mode
	BuildRequest(ctx context.Context, prompt string) (*http.Request, error)

	// ParseResponse extracts the generated text from a 2xx response body.
	// It returns an error wrapping ErrUnexpectedShape when the body does not
	// match the provider's schema or carries no text.
	ParseResponse(body []byte) (string, error)
}

// ErrUnexpectedShape reports a successful response whose body is not what the provider documents
var ErrUnexpectedShape = errors.New("unexpected response shape")
