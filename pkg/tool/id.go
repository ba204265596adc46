package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewTraceID returns a compact random id for request tracing.
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
