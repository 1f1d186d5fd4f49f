package logging

import (
	"fmt"
	"os"
	"sync"

	"proposal-generator/internal/logging/types"
)

// ErrorHandler handles adapter write failures. The failed entry is written to
// a fallback adapter so it is not lost, and failures are counted per adapter
// for the status report.
type ErrorHandler struct {
	fallback types.LogAdapter

	mu        sync.Mutex
	failures  map[string]uint64
	lastError map[string]string
}

// NewErrorHandler creates an error handler writing failed entries to fallback.
// A nil fallback only records the failure.
func NewErrorHandler(fallback types.LogAdapter) *ErrorHandler {
	return &ErrorHandler{
		fallback:  fallback,
		failures:  make(map[string]uint64),
		lastError: make(map[string]string),
	}
}

// HandleError handles an error from a logging adapter
func (h *ErrorHandler) HandleError(err error, adapterName string, entry *types.LogEntry) {
	h.mu.Lock()
	h.failures[adapterName]++
	h.lastError[adapterName] = err.Error()
	h.mu.Unlock()

	if h.fallback == nil || h.fallback.Name() == adapterName {
		fmt.Fprintf(os.Stderr, "logging adapter %s error: %v\n", adapterName, err)
		return
	}

	if fallbackErr := h.fallback.Write(entry); fallbackErr != nil {
		// stderr, never back into the logger
		fmt.Fprintf(os.Stderr, "logging fallback failed for %s: %v (original error: %v)\n",
			adapterName, fallbackErr, err)
	}
}

// Failures returns the failure count and last error recorded for an adapter
func (h *ErrorHandler) Failures(adapterName string) (uint64, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failures[adapterName], h.lastError[adapterName]
}
