package adapters

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"proposal-generator/internal/logging/types"
)

// StdoutAdapter writes log entries as JSON or text lines to stdout (or any writer)
type StdoutAdapter struct {
	name      string
	format    string
	colorized bool
	out       io.Writer
	mu        sync.Mutex
}

// StdoutConfig represents configuration for the stdout adapter
type StdoutConfig struct {
	Format    string    `yaml:"format"`    // json or text
	Colorized bool      `yaml:"colorized"` // ANSI colours in text mode
	Output    io.Writer `yaml:"-"`         // defaults to os.Stdout
}

// NewStdoutAdapter creates a new stdout adapter
func NewStdoutAdapter(name string, config StdoutConfig) *StdoutAdapter {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	return &StdoutAdapter{
		name:      name,
		format:    config.Format,
		colorized: config.Colorized,
		out:       out,
	}
}

// Write writes a log entry
func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var output string
	var err error

	switch strings.ToLower(a.format) {
	case "text":
		output = a.formatText(entry)
	default:
		output, err = a.formatJSON(entry)
	}

	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	_, err = fmt.Fprintln(a.out, output)
	return err
}

// Close is a no-op for stdout
func (a *StdoutAdapter) Close() error {
	return nil
}

// Health always succeeds for stdout
func (a *StdoutAdapter) Health() error {
	return nil
}

// Name returns the name of the adapter
func (a *StdoutAdapter) Name() string {
	return a.name
}

func (a *StdoutAdapter) formatJSON(entry *types.LogEntry) (string, error) {
	logData := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		logData[k] = v
	}

	// reserved keys win over fields of the same name
	logData["level"] = entry.Level.String()
	logData["message"] = entry.Message
	logData["time"] = entry.Timestamp.Format(time.RFC3339)

	data, err := json.Marshal(logData)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (a *StdoutAdapter) formatText(entry *types.LogEntry) string {
	timestamp := entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00")
	level := strings.ToUpper(entry.Level.String())

	if a.colorized {
		level = colorizeLevel(level)
	}

	output := fmt.Sprintf("%s [%s] %s", timestamp, level, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fields := make([]string, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		output += " " + strings.Join(fields, " ")
	}

	return output
}

func colorizeLevel(level string) string {
	const (
		red    = "\033[31m"
		yellow = "\033[33m"
		blue   = "\033[34m"
		gray   = "\033[90m"
		reset  = "\033[0m"
	)

	switch level {
	case "DEBUG":
		return gray + level + reset
	case "INFO":
		return blue + level + reset
	case "WARN":
		return yellow + level + reset
	case "ERROR", "FATAL":
		return red + level + reset
	default:
		return level
	}
}
