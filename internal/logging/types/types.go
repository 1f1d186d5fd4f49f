package types

import (
	"context"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return "info"
	}
}

// ParseLogLevel parses a level name, falling back to info
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// LogEntry represents a single log entry
type LogEntry struct {
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Context   context.Context        `json:"-"`
}

// LogAdapter defines the interface for log output adapters
type LogAdapter interface {
	// Write writes a log entry to the adapter's destination
	Write(entry *LogEntry) error

	// Close flushes pending entries and releases resources
	Close() error

	// Health returns the health status of the adapter
	Health() error

	// Name returns the name of the adapter
	Name() string
}

// Logger defines the main logging interface
type Logger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, fields ...map[string]interface{})
	Fatal(message string, fields ...map[string]interface{})

	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	Log(level LogLevel, message string, fields ...map[string]interface{})

	SetLevel(level LogLevel)
	GetLevel() LogLevel

	AddAdapter(adapter LogAdapter) error
	RemoveAdapter(adapterName string) error

	Close() error
}

// AdapterConfig represents configuration for a specific adapter
type AdapterConfig struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}
