package models

import "time"

// ProposalResponse is returned when a proposal was generated
type ProposalResponse struct {
	Proposal string `json:"proposal"`
}

// ErrorResponse represents an error response. Details carries the upstream
// or malformed payload as-is; Stack is only filled in development mode.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
	Message string      `json:"message,omitempty"`
	Stack   string      `json:"stack,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}
