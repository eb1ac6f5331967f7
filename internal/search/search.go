// Package search filters a favorites collection by an exact ordered-subsequence
// test or by a pluggable fuzzy matcher.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gistfav/gistfav/internal/favorites"
)

// ErrFuzzyUnavailable is returned by fuzzy searches when no engine is loaded.
var ErrFuzzyUnavailable = errors.New("fuzzy search engine unavailable")

// Mode selects how a query is matched.
type Mode int

const (
	Exact Mode = iota
	Fuzzy
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Fuzzy {
		return Exact
	}
	return Fuzzy
}

// ParseMode accepts "exact" or "fuzzy" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return Exact, nil
	case "fuzzy":
		return Fuzzy, nil
	default:
		return Exact, fmt.Errorf("unknown search mode %q (want exact or fuzzy)", s)
	}
}

// Document is the lower-cased searchable form of one entry.
type Document struct {
	// Fields holds name, url and description in that order.
	Fields [3]string
	// Text is the non-empty fields joined by single spaces.
	Text string
}

// NewCorpus builds one Document per entry, preserving order.
func NewCorpus(entries []favorites.Entry) []Document {
	corpus := make([]Document, len(entries))
	for i, e := range entries {
		d := Document{Fields: [3]string{
			strings.ToLower(e.Name),
			strings.ToLower(e.URL),
			strings.ToLower(e.Description),
		}}
		parts := make([]string, 0, 3)
		for _, f := range d.Fields {
			if f != "" {
				parts = append(parts, f)
			}
		}
		d.Text = strings.Join(parts, " ")
		corpus[i] = d
	}
	return corpus
}

// Match points at a corpus position. Higher scores rank first.
type Match struct {
	Index int
	Score int
}

// Matcher is a search strategy over a prepared corpus. Query is already
// trimmed, lower-cased and non-empty.
type Matcher interface {
	Search(query string, corpus []Document) ([]Match, error)
}

// NormalizeQuery trims and lower-cases a raw query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Filter returns the entries matching query. An empty query returns entries
// unchanged. Exact mode keeps collection order; fuzzy mode orders by score
// and fails with ErrFuzzyUnavailable when fuzzy is nil.
func Filter(query string, mode Mode, entries []favorites.Entry, fuzzy Matcher) ([]favorites.Entry, error) {
	if NormalizeQuery(query) == "" {
		return entries, nil
	}
	return NewIndex(entries).Filter(query, mode, fuzzy)
}
