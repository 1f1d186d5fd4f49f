package proposal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"proposal-generator/internal/llm"
	"proposal-generator/internal/llm/processors"
	"proposal-generator/internal/logging"
	"proposal-generator/pkg/models"
)

// maxResponseBytes caps how much of a provider response is buffered
const maxResponseBytes = 10 << 20

// Generator turns a ProposalRequest into proposal text with exactly one call
// to the configured provider. It holds no per-request state and is safe for
// concurrent use.
type Generator struct {
	provider  llm.Provider
	config    llm.ProviderConfig
	client    *http.Client
	cleaner   *processors.HTMLCleaner
	stripHTML bool
	validate  *validator.Validate
	logger    logging.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithHTTPClient replaces the outbound HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) {
		g.client = client
	}
}

// WithLogger sets the logger used for generation events
func WithLogger(logger logging.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithHTMLStripping toggles reducing HTML job descriptions to text
func WithHTMLStripping(enabled bool) Option {
	return func(g *Generator) {
		g.stripHTML = enabled
	}
}

// NewGenerator creates a generator bound to one provider
func NewGenerator(provider llm.Provider, cfg llm.ProviderConfig, opts ...Option) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	g := &Generator{
		provider:  provider,
		config:    cfg,
		client:    &http.Client{Timeout: timeout},
		cleaner:   processors.NewHTMLCleaner(),
		stripHTML: true,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logging.GetGlobalLogger()
	}

	return g
}

// ProviderName returns the name of the configured provider
func (g *Generator) ProviderName() string {
	return g.provider.Name()
}

// Ready reports whether a credential is configured, without calling the provider
func (g *Generator) Ready() bool {
	return g.config.HasCredential()
}

// Generate validates the request, renders the prompt and calls the provider
// once. Every returned error is a *Error.
func (g *Generator) Generate(ctx context.Context, req models.ProposalRequest) (string, error) {
	if err := g.validateRequest(req); err != nil {
		return "", err
	}

	if g.stripHTML {
		description, err := g.cleaner.Normalize(req.JobDescription)
		if err != nil {
			return "", NewUnexpectedError(fmt.Errorf("normalize job description: %w", err))
		}
		// markup with no text in it
		if description == "" {
			return "", NewValidationError("Job description is required")
		}
		req.JobDescription = description
	}

	if !g.config.HasCredential() {
		g.logger.Error("LLM API key not configured", map[string]interface{}{
			"provider": g.provider.Name(),
			"key_env":  g.config.KeyName(),
		})
		return "", NewConfigurationError(g.config.KeyName())
	}

	prompt := BuildPrompt(req)

	httpReq, err := g.provider.BuildRequest(ctx, prompt)
	if err != nil {
		return "", NewUnexpectedError(err)
	}

	startTime := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.WithError(err).Error("LLM provider call failed", map[string]interface{}{
			"provider": g.provider.Name(),
			"duration": time.Since(startTime).String(),
		})
		return "", NewUnexpectedError(fmt.Errorf("call %s: %w", g.provider.Name(), err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", NewUnexpectedError(fmt.Errorf("read %s response: %w", g.provider.Name(), err))
	}

	fields := map[string]interface{}{
		"provider": g.provider.Name(),
		"status":   resp.StatusCode,
		"duration": time.Since(startTime).String(),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("LLM provider returned an error", fields)
		return "", NewUpstreamError(resp.StatusCode, decodeDetails(body))
	}

	text, err := g.provider.ParseResponse(body)
	if err != nil {
		g.logger.WithError(err).Error("LLM provider response has unexpected shape", fields)
		if errors.Is(err, llm.ErrUnexpectedShape) {
			return "", NewMalformedResponseError(decodeDetails(body), err)
		}
		return "", NewUnexpectedError(err)
	}

	fields["proposal_length"] = len(text)
	g.logger.Info("Proposal generated", fields)

	return text, nil
}

func (g *Generator) validateRequest(req models.ProposalRequest) error {
	err := g.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldErr := range validationErrors {
			if fieldErr.StructField() == "JobDescription" {
				return NewValidationError("Job description is required")
			}
		}
		return NewValidationError(validationErrors.Error())
	}

	return NewUnexpectedError(err)
}

// decodeDetails returns the body as parsed JSON when possible, the raw text
// otherwise, and an empty object for an empty body
func decodeDetails(body []byte) interface{} {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]interface{}{}
	}

	var parsed interface{}
	if err := json.Unmarshal(trimmed, &parsed); err == nil {
		return parsed
	}
	return string(body)
}
