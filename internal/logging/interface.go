package logging

// Re-export types so callers only import this package
import "proposal-generator/internal/logging/types"

type LogLevel = types.LogLevel
type LogEntry = types.LogEntry
type LogAdapter = types.LogAdapter
type Logger = types.Logger
type AdapterConfig = types.AdapterConfig

const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)

// ParseLogLevel parses a string log level into LogLevel
func ParseLogLevel(levelStr string) LogLevel {
	return types.ParseLogLevel(levelStr)
}
