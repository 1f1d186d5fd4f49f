package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRequestID generates a unique request ID for tracking
func GenerateRequestID() string {
	return uuid.New().String()
}

// IsValidRequestID reports whether an incoming X-Request-ID can be reused
func IsValidRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// FormatDuration formats a duration to a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// GetStringOrDefault returns the value if not empty, otherwise returns the default
func GetStringOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
