package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"proposal-generator/internal/config"
	"proposal-generator/internal/logging/adapters"
	"proposal-generator/internal/logging/types"
)

type captureAdapter struct {
	name    string
	mu      sync.Mutex
	entries []*types.LogEntry
	closed  bool
}

func (c *captureAdapter) Write(entry *types.LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureAdapter) Close() error  { c.closed = true; return nil }
func (c *captureAdapter) Health() error { return nil }
func (c *captureAdapter) Name() string  { return c.name }

func TestMultiLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	capture := &captureAdapter{name: "capture"}
	logger := NewMultiLogger()
	if err := logger.AddAdapter(capture); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}
	logger.SetLevel(WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	if len(capture.entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(capture.entries))
	}
	if capture.entries[0].Level != WarnLevel || capture.entries[1].Level != ErrorLevel {
		t.Errorf("unexpected levels: %v, %v", capture.entries[0].Level, capture.entries[1].Level)
	}
}

func TestMultiLogger_DerivedLoggersShareAdapters(t *testing.T) {
	t.Parallel()

	capture := &captureAdapter{name: "capture"}
	root := NewMultiLogger()
	child := root.WithField("request_id", "abc").WithError(errors.New("boom"))

	// added after deriving: the child must still see it
	if err := root.AddAdapter(capture); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}

	child.Info("hello", map[string]interface{}{"status": 200})
	root.Info("plain")

	if len(capture.entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(capture.entries))
	}
	fields := capture.entries[0].Fields
	if fields["request_id"] != "abc" || fields["error"] != "boom" || fields["status"] != 200 {
		t.Errorf("child fields = %v", fields)
	}
	if _, ok := capture.entries[1].Fields["request_id"]; ok {
		t.Error("root logger must not inherit child fields")
	}
}

func TestMultiLogger_DuplicateAndRemoveAdapter(t *testing.T) {
	t.Parallel()

	logger := NewMultiLogger()
	capture := &captureAdapter{name: "dup"}
	if err := logger.AddAdapter(capture); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}
	if err := logger.AddAdapter(&captureAdapter{name: "dup"}); err == nil {
		t.Error("expected duplicate adapter error")
	}
	if err := logger.RemoveAdapter("dup"); err != nil {
		t.Fatalf("RemoveAdapter: %v", err)
	}
	if !capture.closed {
		t.Error("removed adapter should be closed")
	}
	if err := logger.RemoveAdapter("dup"); err == nil {
		t.Error("expected not found error")
	}
}

func TestStdoutAdapter_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewMultiLogger()
	logger.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{Format: "json", Output: &buf}))

	logger.WithField("provider", "anthropic").Info("proposal generated")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["message"] != "proposal generated" || line["level"] != "info" || line["provider"] != "anthropic" {
		t.Errorf("unexpected line: %v", line)
	}
}

func TestStdoutAdapter_TextFormatSortsFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{Format: "text", Output: &buf})
	logger := NewMultiLogger()
	logger.AddAdapter(adapter)

	logger.Warn("slow upstream", map[string]interface{}{"z": 1, "a": 2})

	out := buf.String()
	if !strings.Contains(out, "[WARN] slow upstream a=2 z=1") {
		t.Errorf("unexpected text output: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]LogLevel{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestManager_InitializeFallsBackToStdout(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Logging.Level = "debug"

	manager := NewManager()
	if err := manager.Initialize(cfg); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if manager.GetLogger().GetLevel() != DebugLevel {
		t.Errorf("level = %v, want debug", manager.GetLogger().GetLevel())
	}
}

func TestManager_InitializeRejectsUnknownAdapter(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Logging.Adapters = append(cfg.Logging.Adapters, struct {
		Name    string                 `yaml:"name"`
		Type    string                 `yaml:"type"`
		Enabled bool                   `yaml:"enabled"`
		Options map[string]interface{} `yaml:"options"`
	}{Name: "weird", Type: "carrier-pigeon", Enabled: true})

	if err := NewManager().Initialize(cfg); err == nil {
		t.Fatal("expected error for unsupported adapter type")
	}
}

type failingAdapter struct{ name string }

func (f *failingAdapter) Write(entry *types.LogEntry) error { return errors.New("sink unavailable") }
func (f *failingAdapter) Close() error                      { return nil }
func (f *failingAdapter) Health() error                     { return errors.New("sink unavailable") }
func (f *failingAdapter) Name() string                      { return f.name }

func TestMultiLogger_FailedWritesGoToFallback(t *testing.T) {
	t.Parallel()

	fallback := &captureAdapter{name: "fallback"}
	healthy := &captureAdapter{name: "healthy"}

	logger := NewMultiLogger()
	logger.SetErrorHandler(NewErrorHandler(fallback))
	if err := logger.AddAdapter(&failingAdapter{name: "remote"}); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}
	if err := logger.AddAdapter(healthy); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}

	logger.Info("first")
	logger.Info("second")

	if len(fallback.entries) != 2 || fallback.entries[0].Message != "first" {
		t.Errorf("fallback got %d entries", len(fallback.entries))
	}
	if len(healthy.entries) != 2 {
		t.Errorf("healthy adapter got %d entries, want 2", len(healthy.entries))
	}

	status := logger.Status()
	if len(status) != 2 {
		t.Fatalf("status = %+v", status)
	}
	// sorted by name: healthy, remote
	if !status[0].Healthy || status[0].WriteFailures != 0 {
		t.Errorf("healthy status = %+v", status[0])
	}
	if status[1].Healthy || status[1].WriteFailures != 2 || status[1].LastFailure != "sink unavailable" {
		t.Errorf("remote status = %+v", status[1])
	}
}

type sheddingAdapter struct{ captureAdapter }

func (s *sheddingAdapter) Dropped() int { return 4 }

func TestMultiLogger_StatusReportsDroppedEntries(t *testing.T) {
	t.Parallel()

	logger := NewMultiLogger()
	if err := logger.AddAdapter(&sheddingAdapter{captureAdapter{name: "remote"}}); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}
	if err := logger.AddAdapter(&captureAdapter{name: "local"}); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}

	statuses := logger.Status()
	if len(statuses) != 2 || statuses[0].Name != "local" || statuses[1].Name != "remote" {
		t.Fatalf("statuses = %+v", statuses)
	}
	if statuses[0].Dropped != 0 || statuses[1].Dropped != 4 {
		t.Errorf("dropped = %d, %d; want 0, 4", statuses[0].Dropped, statuses[1].Dropped)
	}
}
