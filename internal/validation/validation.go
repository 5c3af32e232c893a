// Package validation checks API request payloads before they reach the
// service layer, reporting per-field error messages.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error carries field-specific validation messages for a rejected request.
type Error struct {
	Fields map[string]string
}

// Error renders the field messages in a stable order.
func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
