// Package preferences holds the two preference form schemas and their validation rules.
package preferences

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
)

// Option is a selectable choice in a form.
type Option struct {
	ID    string
	Label string
}

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// Error implements error. Messages are ordered by field name.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return fmt.Sprintf("%s: %s", domain.ErrInvalidPreferences, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match domain.ErrInvalidPreferences.
func (fe FieldErrors) Unwrap() error { return domain.ErrInvalidPreferences }

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func requireSelection(fe FieldErrors, field string, values []string, allowed []Option, msg string) {
	if len(values) == 0 {
		fe[field] = msg
		return
	}
	for _, v := range values {
		if !hasOption(allowed, v) {
			fe[field] = fmt.Sprintf("Unknown option %q.", v)
			return
		}
	}
}

func requireChoice(fe FieldErrors, field, value string, allowed []Option, msg string) {
	if value == "" || !hasOption(allowed, value) {
		fe[field] = msg
	}
}

func requireRange(fe FieldErrors, field string, v, lo, hi int) {
	if v < lo || v > hi {
		fe[field] = fmt.Sprintf("Must be between %d and %d.", lo, hi)
	}
}

func hasOption(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
