package adapters

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"proposal-generator/internal/logging/types"
)

func TestBetterstackAdapter_ShipsEntriesOnClose(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		received []BetterstackLogEntry
		auth     string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var entry BetterstackLogEntry
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		received = append(received, entry)
		auth = r.Header.Get("Authorization")
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	adapter, err := NewBetterstackAdapter("bs", BetterstackConfig{
		SourceToken: "token",
		Endpoint:    srv.URL,
		HTTPClient:  srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewBetterstackAdapter: %v", err)
	}

	for _, msg := range []string{"one", "two"} {
		if err := adapter.Write(&types.LogEntry{Level: types.InfoLevel, Message: msg, Timestamp: time.Now()}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d entries, want 2", len(received))
	}
	if received[0].Message != "one" || received[1].Level != "info" {
		t.Errorf("unexpected entries: %+v", received)
	}
	if auth != "Bearer token" {
		t.Errorf("Authorization = %q", auth)
	}
	if err := adapter.Health(); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestBetterstackAdapter_UnhealthyAfterRejection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	adapter, err := NewBetterstackAdapter("bs", BetterstackConfig{SourceToken: "bad", Endpoint: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewBetterstackAdapter: %v", err)
	}
	adapter.Write(&types.LogEntry{Level: types.ErrorLevel, Message: "x", Timestamp: time.Now()})
	adapter.Close()

	if err := adapter.Health(); err == nil {
		t.Error("expected unhealthy adapter after 401")
	}
	if err := adapter.Write(&types.LogEntry{Message: "late"}); err == nil {
		t.Error("expected error writing to closed adapter")
	}
}

func TestBetterstackAdapter_RequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewBetterstackAdapter("bs", BetterstackConfig{}); err == nil {
		t.Fatal("expected error without source token")
	}
}
