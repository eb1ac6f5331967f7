package favorites

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrValidation is returned when a submitted entry is missing a required field
// or carries an unusable URL.
var ErrValidation = errors.New("invalid entry")

// Entry is a single favorite link. Entries have no identifier; their position
// in the backing array is their identity.
type Entry struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Normalize returns a copy of e with every field trimmed.
func (e Entry) Normalize() Entry {
	return Entry{
		Name:        strings.TrimSpace(e.Name),
		URL:         strings.TrimSpace(e.URL),
		Description: strings.TrimSpace(e.Description),
	}
}

// Validate checks that the entry can be submitted. It does not trim; callers
// normalize first.
func (e Entry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if e.URL == "" {
		return fmt.Errorf("%w: url is required", ErrValidation)
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return fmt.Errorf("%w: url: %v", ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url must have http or https scheme, got %q", ErrValidation, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", ErrValidation)
	}
	return nil
}

// Clone returns an independent copy of entries. A nil slice stays nil.
func Clone(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
