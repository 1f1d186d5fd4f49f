package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"proposal-generator/internal/logging/types"
)

// BetterstackAdapter ships log entries to Betterstack from a background goroutine
// so request handlers never wait on log delivery.
type BetterstackAdapter struct {
	name       string
	config     BetterstackConfig
	httpClient *http.Client
	queue      chan BetterstackLogEntry
	done       chan struct{}
	closeOnce  sync.Once

	mu            sync.Mutex
	healthy       bool
	dropped       int
	lastError     error
	lastErrorTime time.Time
}

// BetterstackConfig represents configuration for the Betterstack adapter
type BetterstackConfig struct {
	SourceToken string            `yaml:"source_token"`
	Endpoint    string            `yaml:"endpoint"`
	QueueSize   int               `yaml:"queue_size"`
	MaxRetries  int               `yaml:"max_retries"`
	Timeout     time.Duration     `yaml:"timeout"`
	UserAgent   string            `yaml:"user_agent"`
	Headers     map[string]string `yaml:"headers"`
	HTTPClient  *http.Client      `yaml:"-"`
}

// BetterstackLogEntry represents a log entry in Betterstack format
type BetterstackLogEntry struct {
	Timestamp time.Time              `json:"dt"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// NewBetterstackAdapter creates a new Betterstack adapter and starts its sender
func NewBetterstackAdapter(name string, config BetterstackConfig) (*BetterstackAdapter, error) {
	if config.SourceToken == "" {
		return nil, fmt.Errorf("source_token is required for Betterstack adapter")
	}
	if config.Endpoint == "" {
		config.Endpoint = "https://in.logs.betterstack.com"
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 256
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "proposal-generator/1.0"
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	adapter := &BetterstackAdapter{
		name:       name,
		config:     config,
		httpClient: httpClient,
		queue:      make(chan BetterstackLogEntry, config.QueueSize),
		done:       make(chan struct{}),
		healthy:    true,
	}

	go adapter.run()

	return adapter, nil
}

// Write enqueues a log entry; entries are dropped when the queue is full
func (a *BetterstackAdapter) Write(entry *types.LogEntry) (err error) {
	bsEntry := BetterstackLogEntry{
		Timestamp: entry.Timestamp,
		Level:     entry.Level.String(),
		Message:   entry.Message,
		Fields:    entry.Fields,
	}

	defer func() {
		// send on closed channel after Close
		if recover() != nil {
			err = fmt.Errorf("betterstack adapter %s is closed", a.name)
		}
	}()

	select {
	case a.queue <- bsEntry:
		return nil
	default:
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
		return fmt.Errorf("betterstack queue full, entry dropped")
	}
}

// Close drains the queue and stops the sender
func (a *BetterstackAdapter) Close() error {
	a.closeOnce.Do(func() {
		close(a.queue)
	})
	<-a.done
	return nil
}

// Health returns the health status of the adapter
func (a *BetterstackAdapter) Health() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.healthy {
		return fmt.Errorf("adapter unhealthy: %v (last error at %v)", a.lastError, a.lastErrorTime)
	}
	return nil
}

// Name returns the name of the adapter
func (a *BetterstackAdapter) Name() string {
	return a.name
}

// Dropped returns how many entries were discarded because the queue was full
func (a *BetterstackAdapter) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

func (a *BetterstackAdapter) run() {
	defer close(a.done)

	for entry := range a.queue {
		err := a.send(entry)

		a.mu.Lock()
		if err != nil {
			a.healthy = false
			a.lastError = err
			a.lastErrorTime = time.Now()
		} else {
			a.healthy = true
			a.lastError = nil
		}
		a.mu.Unlock()
	}
}

func (a *BetterstackAdapter) send(entry BetterstackLogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
		}

		req, err := http.NewRequest(http.MethodPost, a.config.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+a.config.SourceToken)
		req.Header.Set("User-Agent", a.config.UserAgent)
		for key, value := range a.config.Headers {
			req.Header.Set(key, value)
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("betterstack returned %d: %s", resp.StatusCode, string(body))
		if !isRetryableStatus(resp.StatusCode) {
			break
		}
	}

	return lastErr
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
