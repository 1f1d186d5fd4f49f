package logging

import (
	"sort"
)

// AdapterStatus describes the state of one configured adapter
type AdapterStatus struct {
	Name          string `json:"name"`
	Healthy       bool   `json:"healthy"`
	Error         string `json:"error,omitempty"`
	WriteFailures uint64 `json:"write_failures"`
	LastFailure   string `json:"last_failure,omitempty"`
	Dropped       int    `json:"dropped,omitempty"`
}

// dropCounter is implemented by adapters that discard entries under load
type dropCounter interface {
	Dropped() int
}

// Status reports the health and write failures of every adapter, sorted by name
func (l *MultiLogger) Status() []AdapterStatus {
	l.set.mu.RLock()
	defer l.set.mu.RUnlock()

	statuses := make([]AdapterStatus, 0, len(l.set.adapters))
	for name, adapter := range l.set.adapters {
		status := AdapterStatus{Name: name, Healthy: true}
		if err := adapter.Health(); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		status.WriteFailures, status.LastFailure = l.set.errors.Failures(name)
		if counter, ok := adapter.(dropCounter); ok {
			status.Dropped = counter.Dropped()
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}

// LoggingStatus reports the adapters of the global logger
func LoggingStatus() []AdapterStatus {
	if logger, ok := GetGlobalLogger().(*MultiLogger); ok {
		return logger.Status()
	}
	return nil
}
