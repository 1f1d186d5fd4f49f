package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	App struct {
		Name        string `yaml:"name" default:"proposal-generator"`
		Environment string `yaml:"environment" default:"production"`
	} `yaml:"app"`

	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"90s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
		BodyLimit    string        `yaml:"body_limit" default:"1M"`
	} `yaml:"server"`

	LLM struct {
		Provider     string            `yaml:"provider" default:"anthropic"`
		APIKey       string            `yaml:"api_key"`
		APIKeyEnv    string            `yaml:"api_key_env"`
		Endpoint     string            `yaml:"endpoint"`
		AuthMode     string            `yaml:"auth_mode"`
		AuthHeader   string            `yaml:"auth_header"`
		BodyShape    string            `yaml:"body_shape"`
		Model        string            `yaml:"model"`
		MaxTokens    int               `yaml:"max_tokens"`
		Temperature  float64           `yaml:"temperature"`
		Timeout      time.Duration     `yaml:"timeout" default:"60s"`
		ExtraHeaders map[string]string `yaml:"extra_headers"`
	} `yaml:"llm"`

	Prompt struct {
		StripHTML bool `yaml:"strip_html" default:"true"`
	} `yaml:"prompt"`

	RateLimit struct {
		Enabled           bool          `yaml:"enabled" default:"false"`
		RequestsPerMinute int           `yaml:"requests_per_minute" default:"30"`
		Burst             int           `yaml:"burst" default:"10"`
		ExpiresIn         time.Duration `yaml:"expires_in" default:"3m"`
		RedisURL          string        `yaml:"redis_url"`
		RedisTimeout      time.Duration `yaml:"redis_timeout" default:"2s"`
	} `yaml:"rate_limit"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// ProviderPreset holds the defaults for a known LLM provider
type ProviderPreset struct {
	Endpoint     string
	AuthMode     string
	AuthHeader   string
	APIKeyEnv    string
	BodyShape    string
	Model        string
	MaxTokens    int
	ExtraHeaders map[string]string
}

// ProviderPresets are the providers that can be selected with LLM_PROVIDER
var ProviderPresets = map[string]ProviderPreset{
	"anthropic": {
		Endpoint:   "https://api.anthropic.com/v1/messages",
		AuthMode:   "header-key",
		AuthHeader: "x-api-key",
		APIKeyEnv:  "ANTHROPIC_API_KEY",
		BodyShape:  "anthropic",
		Model:      "claude-sonnet-4-20250514",
		MaxTokens:  2000,
		ExtraHeaders: map[string]string{
			"anthropic-version": "2023-06-01",
		},
	},
	"gemini": {
		Endpoint:  "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent",
		AuthMode:  "query-key",
		APIKeyEnv: "GOOGLE_API_KEY",
		BodyShape: "gemini",
		Model:     "gemini-2.0-flash",
		MaxTokens: 2000,
	},
	"groq": {
		Endpoint:  "https://api.groq.com/openai/v1/chat/completions",
		AuthMode:  "bearer-token",
		APIKeyEnv: "GROQ_API_KEY",
		BodyShape: "openai-chat",
		Model:     "llama-3.3-70b-versatile",
		MaxTokens: 2000,
	},
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.App.Environment)
	return env == "development" || env == "dev"
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	// $VAR syntax, ${VAR} was handled above
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// Default returns a configuration populated with defaults only
func Default() *Config {
	config := &Config{}

	config.App.Name = "proposal-generator"
	config.App.Environment = "production"

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 90 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.BodyLimit = "1M"

	config.LLM.Provider = "anthropic"
	config.LLM.Timeout = 60 * time.Second

	config.Prompt.StripHTML = true

	config.RateLimit.Enabled = false
	config.RateLimit.RequestsPerMinute = 30
	config.RateLimit.Burst = 10
	config.RateLimit.ExpiresIn = 3 * time.Minute
	config.RateLimit.RedisTimeout = 2 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		}
	}

	config.loadFromEnv()

	if err := config.applyProviderPreset(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if env := os.Getenv("APP_ENV"); env != "" {
		c.App.Environment = env
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = strings.ToLower(provider)
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if endpoint := os.Getenv("LLM_ENDPOINT"); endpoint != "" {
		c.LLM.Endpoint = endpoint
	}

	if authMode := os.Getenv("LLM_AUTH_MODE"); authMode != "" {
		c.LLM.AuthMode = authMode
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if maxTokens := os.Getenv("LLM_MAX_TOKENS"); maxTokens != "" {
		if n, err := strconv.Atoi(maxTokens); err == nil {
			c.LLM.MaxTokens = n
		}
	}

	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.LLM.Timeout = d
		}
	}

	if stripHTML := os.Getenv("PROMPT_STRIP_HTML"); stripHTML != "" {
		c.Prompt.StripHTML = stripHTML == "true" || stripHTML == "1"
	}

	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		c.RateLimit.Enabled = enabled == "true" || enabled == "1"
	}

	if rpm := os.Getenv("RATE_LIMIT_RPM"); rpm != "" {
		if n, err := strconv.Atoi(rpm); err == nil {
			c.RateLimit.RequestsPerMinute = n
		}
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.RateLimit.RedisURL = redisURL
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if betterstackEnabled := os.Getenv("BETTERSTACK_ENABLED"); betterstackEnabled != "" {
		enabled := betterstackEnabled == "true" || betterstackEnabled == "1"

		for i := range c.Logging.Adapters {
			if c.Logging.Adapters[i].Name == "betterstack" || c.Logging.Adapters[i].Type == "betterstack" {
				c.Logging.Adapters[i].Enabled = enabled
				break
			}
		}
	}

	c.loadLoggingAdapterEnvVars()
}

// applyProviderPreset fills unset LLM fields from the selected provider preset
// and resolves the API key from the provider's environment variable.
func (c *Config) applyProviderPreset() error {
	preset, ok := ProviderPresets[c.LLM.Provider]
	if !ok {
		// Unknown providers must be fully described in the config file
		if c.LLM.Endpoint == "" || c.LLM.BodyShape == "" || c.LLM.AuthMode == "" {
			return fmt.Errorf("unsupported LLM provider %q: set endpoint, auth_mode and body_shape explicitly", c.LLM.Provider)
		}
	}

	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = preset.Endpoint
	}
	if c.LLM.AuthMode == "" {
		c.LLM.AuthMode = preset.AuthMode
	}
	if c.LLM.AuthHeader == "" {
		c.LLM.AuthHeader = preset.AuthHeader
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = preset.APIKeyEnv
	}
	if c.LLM.BodyShape == "" {
		c.LLM.BodyShape = preset.BodyShape
	}
	if c.LLM.Model == "" {
		c.LLM.Model = preset.Model
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = preset.MaxTokens
	}
	if len(preset.ExtraHeaders) > 0 {
		headers := make(map[string]string, len(preset.ExtraHeaders)+len(c.LLM.ExtraHeaders))
		for k, v := range preset.ExtraHeaders {
			headers[k] = v
		}
		for k, v := range c.LLM.ExtraHeaders {
			headers[k] = v
		}
		c.LLM.ExtraHeaders = headers
	}

	if c.LLM.APIKey == "" && c.LLM.APIKeyEnv != "" {
		c.LLM.APIKey = os.Getenv(c.LLM.APIKeyEnv)
	}

	return nil
}

// loadLoggingAdapterEnvVars loads environment variables for logging adapters
func (c *Config) loadLoggingAdapterEnvVars() {
	for i := range c.Logging.Adapters {
		adapter := &c.Logging.Adapters[i]

		switch adapter.Type {
		case "betterstack":
			if adapter.Options == nil {
				adapter.Options = make(map[string]interface{})
			}

			if token := os.Getenv("BETTERSTACK_SOURCE_TOKEN"); token != "" {
				adapter.Options["source_token"] = token
			}

			if endpoint := os.Getenv("BETTERSTACK_ENDPOINT"); endpoint != "" {
				adapter.Options["endpoint"] = endpoint
			}

			if timeout := os.Getenv("BETTERSTACK_TIMEOUT"); timeout != "" {
				adapter.Options["timeout"] = timeout
			}
		}
	}
}
