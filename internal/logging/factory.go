package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"proposal-generator/internal/logging/adapters"
	"proposal-generator/internal/logging/types"
)

// AdapterFactory creates logging adapters based on configuration
type AdapterFactory struct{}

// NewAdapterFactory creates a new adapter factory
func NewAdapterFactory() *AdapterFactory {
	return &AdapterFactory{}
}

// CreateAdapter creates a logging adapter based on the provided configuration
func (f *AdapterFactory) CreateAdapter(adapterConfig types.AdapterConfig) (types.LogAdapter, error) {
	switch adapterConfig.Type {
	case "stdout":
		return f.createStdoutAdapter(adapterConfig), nil
	case "betterstack":
		return f.createBetterstackAdapter(adapterConfig)
	default:
		return nil, fmt.Errorf("unsupported adapter type: %s", adapterConfig.Type)
	}
}

func (f *AdapterFactory) createStdoutAdapter(adapterConfig types.AdapterConfig) types.LogAdapter {
	config := adapters.StdoutConfig{
		Format:    getStringOption(adapterConfig.Options, "format", "json"),
		Colorized: getBoolOption(adapterConfig.Options, "colorized", false),
		Output:    outputWriter(getStringOption(adapterConfig.Options, "output", "stdout")),
	}

	return adapters.NewStdoutAdapter(adapterConfig.Name, config)
}

func (f *AdapterFactory) createBetterstackAdapter(adapterConfig types.AdapterConfig) (types.LogAdapter, error) {
	config := adapters.BetterstackConfig{
		SourceToken: getStringOption(adapterConfig.Options, "source_token", ""),
		Endpoint:    getStringOption(adapterConfig.Options, "endpoint", "https://in.logs.betterstack.com"),
		QueueSize:   getIntOption(adapterConfig.Options, "queue_size", 256),
		MaxRetries:  getIntOption(adapterConfig.Options, "max_retries", 2),
		Timeout:     getDurationOption(adapterConfig.Options, "timeout", 10*time.Second),
		UserAgent:   getStringOption(adapterConfig.Options, "user_agent", "proposal-generator/1.0"),
		Headers:     getMapStringOption(adapterConfig.Options, "headers"),
	}

	return adapters.NewBetterstackAdapter(adapterConfig.Name, config)
}

// outputWriter maps an output name to a stream; anything but stderr is stdout
func outputWriter(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// Helper functions to extract options with defaults

func getStringOption(options map[string]interface{}, key string, defaultValue string) string {
	if value, exists := options[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getIntOption(options map[string]interface{}, key string, defaultValue int) int {
	if value, exists := options[key]; exists {
		switch v := value.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return defaultValue
}

func getBoolOption(options map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := options[key]; exists {
		if boolVal, ok := value.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationOption(options map[string]interface{}, key string, defaultValue time.Duration) time.Duration {
	if value, exists := options[key]; exists {
		if str, ok := value.(string); ok {
			if duration, err := time.ParseDuration(str); err == nil {
				return duration
			}
		}
	}
	return defaultValue
}

func getMapStringOption(options map[string]interface{}, key string) map[string]string {
	result := make(map[string]string)
	if value, exists := options[key]; exists {
		if mapVal, ok := value.(map[string]interface{}); ok {
			for k, v := range mapVal {
				if str, ok := v.(string); ok {
					result[k] = str
				}
			}
		}
	}
	return result
}
