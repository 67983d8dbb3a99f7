package scenes

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
)

// GenerateID creates a new unique identifier for runs and audit entries.
func GenerateID() string {
	return uuid.New().String()
}

// validateName rejects empty or whitespace-only names.
func validateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return nil
}

// validatePair rejects empty names and a pair that names the same scene twice.
func validatePair(firstField, first, secondField, second string) error {
	if err := validateName(firstField, first); err != nil {
		return err
	}
	if err := validateName(secondField, second); err != nil {
		return err
	}
	if first == second {
		return fmt.Errorf("%w: %s and %s must differ", ErrValidation, firstField, secondField)
	}
	return nil
}

// ResolveGraphicsURL merges the overlay's query parameters into its URL.
//
// Parameters already present on the URL are replaced by QueryParams entries
// of the same key. The encoded query is sorted by key. Returns false when
// the overlay is nil or its URL is empty, unparseable, or not absolute.
func ResolveGraphicsURL(g *layout.GraphicsOverlay) (string, bool) {
	if g == nil || strings.TrimSpace(g.URL) == "" {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(g.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	if len(g.QueryParams) > 0 {
		q := u.Query()
		for k, v := range g.QueryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), true
}
