package logging

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"proposal-generator/internal/logging/adapters"
	"proposal-generator/internal/logging/types"
)

// adapterSet is shared between a logger and every logger derived from it
type adapterSet struct {
	mu       sync.RWMutex
	adapters map[string]types.LogAdapter
	errors   *ErrorHandler
}

// MultiLogger is the main implementation of the Logger interface
type MultiLogger struct {
	set     *adapterSet
	level   LogLevel
	context context.Context
	fields  map[string]interface{}
	mu      sync.RWMutex
}

// NewMultiLogger creates a new MultiLogger instance
func NewMultiLogger() *MultiLogger {
	return &MultiLogger{
		set: &adapterSet{
			adapters: make(map[string]types.LogAdapter),
			errors: NewErrorHandler(adapters.NewStdoutAdapter("stderr_fallback", adapters.StdoutConfig{
				Format: "json",
				Output: os.Stderr,
			})),
		},
		level:   InfoLevel,
		context: context.Background(),
		fields:  make(map[string]interface{}),
	}
}

// Debug logs a debug message
func (l *MultiLogger) Debug(message string, fields ...map[string]interface{}) {
	l.Log(DebugLevel, message, fields...)
}

// Info logs an info message
func (l *MultiLogger) Info(message string, fields ...map[string]interface{}) {
	l.Log(InfoLevel, message, fields...)
}

// Warn logs a warning message
func (l *MultiLogger) Warn(message string, fields ...map[string]interface{}) {
	l.Log(WarnLevel, message, fields...)
}

// Error logs an error message
func (l *MultiLogger) Error(message string, fields ...map[string]interface{}) {
	l.Log(ErrorLevel, message, fields...)
}

// Fatal logs a fatal message, flushes adapters and exits
func (l *MultiLogger) Fatal(message string, fields ...map[string]interface{}) {
	l.Log(FatalLevel, message, fields...)
	l.Close()
	os.Exit(1)
}

// Log logs a message at the specified level
func (l *MultiLogger) Log(level LogLevel, message string, fields ...map[string]interface{}) {
	if level < l.GetLevel() {
		return
	}

	entry := &types.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Context:   l.context,
		Fields:    l.mergeFields(fields...),
	}

	l.set.mu.RLock()
	defer l.set.mu.RUnlock()

	names := make([]string, 0, len(l.set.adapters))
	for name := range l.set.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := l.set.adapters[name].Write(entry); err != nil {
			l.set.errors.HandleError(err, name, entry)
		}
	}
}

// WithContext returns a new logger with the specified context
func (l *MultiLogger) WithContext(ctx context.Context) Logger {
	return l.derive(ctx, l.copyFields())
}

// WithField returns a new logger with the specified field
func (l *MultiLogger) WithField(key string, value interface{}) Logger {
	fields := l.copyFields()
	fields[key] = value
	return l.derive(l.context, fields)
}

// WithFields returns a new logger with the specified fields
func (l *MultiLogger) WithFields(fields map[string]interface{}) Logger {
	merged := l.copyFields()
	for k, v := range fields {
		merged[k] = v
	}
	return l.derive(l.context, merged)
}

// WithError returns a new logger carrying the error message in the "error" field
func (l *MultiLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// SetErrorHandler replaces the handler called when an adapter write fails
func (l *MultiLogger) SetErrorHandler(handler *ErrorHandler) {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()
	l.set.errors = handler
}

// SetLevel sets the minimum log level
func (l *MultiLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *MultiLogger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// AddAdapter adds a new log adapter
func (l *MultiLogger) AddAdapter(adapter types.LogAdapter) error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	name := adapter.Name()
	if _, exists := l.set.adapters[name]; exists {
		return fmt.Errorf("adapter %s already exists", name)
	}

	l.set.adapters[name] = adapter
	return nil
}

// RemoveAdapter closes and removes a log adapter
func (l *MultiLogger) RemoveAdapter(adapterName string) error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	adapter, exists := l.set.adapters[adapterName]
	if !exists {
		return fmt.Errorf("adapter %s not found", adapterName)
	}

	if err := adapter.Close(); err != nil {
		return fmt.Errorf("failed to close adapter %s: %w", adapterName, err)
	}

	delete(l.set.adapters, adapterName)
	return nil
}

// Close closes all adapters
func (l *MultiLogger) Close() error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	var errs []string
	for name, adapter := range l.set.adapters {
		if err := adapter.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("adapter %s: %v", name, err))
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("failed to close adapters: %s", strings.Join(errs, ", "))
	}

	return nil
}

func (l *MultiLogger) derive(ctx context.Context, fields map[string]interface{}) *MultiLogger {
	return &MultiLogger{
		set:     l.set,
		level:   l.GetLevel(),
		context: ctx,
		fields:  fields,
	}
}

func (l *MultiLogger) copyFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return fields
}

func (l *MultiLogger) mergeFields(additionalFields ...map[string]interface{}) map[string]interface{} {
	fields := l.copyFields()

	for _, fieldMap := range additionalFields {
		for k, v := range fieldMap {
			fields[k] = v
		}
	}

	return fields
}
