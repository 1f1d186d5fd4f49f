package proposal

import (
	"fmt"

	"proposal-generator/internal/config"
	"proposal-generator/internal/llm"
	"proposal-generator/internal/llm/providers"
	"proposal-generator/internal/logging"
)

// NewGeneratorFromConfig selects the provider named in cfg and builds a
// generator for it. A missing API key is not an error here: it is reported
// per request so the service still starts and answers health checks.
func NewGeneratorFromConfig(cfg *config.Config, opts ...Option) (*Generator, error) {
	providerConfig := llm.NewProviderConfig(cfg)

	provider, err := providers.NewProvider(providerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	logger := logging.GetGlobalLogger()
	fields := map[string]interface{}{
		"provider":   provider.Name(),
		"body_shape": string(providerConfig.BodyShape),
		"auth_mode":  string(providerConfig.AuthMode),
		"model":      providerConfig.Model,
	}
	if providerConfig.HasCredential() {
		logger.Info("LLM provider configured", fields)
	} else {
		fields["key_env"] = providerConfig.KeyName()
		logger.Warn("LLM provider configured without an API key; requests will fail until it is set", fields)
	}

	opts = append([]Option{WithHTMLStripping(cfg.Prompt.StripHTML)}, opts...)
	return NewGenerator(provider, providerConfig, opts...), nil
}
