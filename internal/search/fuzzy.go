package search

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Engine names accepted by NewFuzzy.
const (
	EngineSahilm = "sahilm"
	EngineNone   = "none"
)

// DefaultMinScore is the lowest fuzzy score kept when none is configured.
const DefaultMinScore = -40

// NoThreshold keeps every fuzzy hit regardless of score.
const NoThreshold = math.MinInt

// FuzzyMatcher scores each field of a document with sahilm/fuzzy and keeps
// the best one. Documents whose best score is below MinScore are dropped.
type FuzzyMatcher struct {
	MinScore int
}

var _ Matcher = (*FuzzyMatcher)(nil)

// NewFuzzy returns the fuzzy engine registered under name. An empty name
// selects the default engine; "none" disables fuzzy search.
func NewFuzzy(name string, minScore int) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineSahilm:
		return &FuzzyMatcher{MinScore: minScore}, nil
	case EngineNone:
		return nil, ErrFuzzyUnavailable
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrFuzzyUnavailable, name)
	}
}

// fieldSource flattens a corpus into name/url/description strings.
type fieldSource []Document

func (s fieldSource) String(i int) string { return s[i/3].Fields[i%3] }
func (s fieldSource) Len() int            { return len(s) * 3 }

func (f *FuzzyMatcher) Search(query string, corpus []Document) ([]Match, error) {
	best := make(map[int]int)
	for _, m := range fuzzy.FindFrom(query, fieldSource(corpus)) {
		doc := m.Index / 3
		if s, ok := best[doc]; !ok || m.Score > s {
			best[doc] = m.Score
		}
	}

	matches := make([]Match, 0, len(best))
	for doc, score := range best {
		if score < f.MinScore {
			continue
		}
		matches = append(matches, Match{Index: doc, Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})
	return matches, nil
}
