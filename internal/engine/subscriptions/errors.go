package subscriptions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"hookreg/internal/platform/repositories"
)

var (
	// ErrUnauthorized means the caller has no identity or no active organization.
	ErrUnauthorized = errors.New("authentication required")

	// ErrNotFound covers both a missing id and an id owned by another
	// organization. Callers cannot tell the two apart.
	ErrNotFound = errors.New("webhook not found")
)

// ValidationError lists the rejected input fields by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid webhook"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid webhook: " + strings.Join(parts, "; ")
}

// NewValidationError reports a single rejected field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func translate(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
