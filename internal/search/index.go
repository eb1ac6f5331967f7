package search

import (
	"sync"

	"github.com/gistfav/gistfav/internal/favorites"
)

// Index caches the searchable corpus of one collection snapshot. The corpus
// is built on the first search and reused until the Index is replaced.
type Index struct {
	entries []favorites.Entry

	mu     sync.Mutex
	corpus []Document
	built  bool
}

// NewIndex wraps entries without copying them; callers must not mutate the
// slice afterwards.
func NewIndex(entries []favorites.Entry) *Index {
	return &Index{entries: entries}
}

// Entries returns the indexed collection.
func (ix *Index) Entries() []favorites.Entry {
	return ix.entries
}

// Built reports whether the corpus has been derived yet.
func (ix *Index) Built() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.built
}

func (ix *Index) documents() []Document {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.built {
		ix.corpus = NewCorpus(ix.entries)
		ix.built = true
	}
	return ix.corpus
}

// Filter applies query in the given mode. See the package-level Filter.
func (ix *Index) Filter(query string, mode Mode, fuzzy Matcher) ([]favorites.Entry, error) {
	q := NormalizeQuery(query)
	if q == "" {
		return ix.entries, nil
	}

	var matcher Matcher
	switch mode {
	case Fuzzy:
		if fuzzy == nil {
			return nil, ErrFuzzyUnavailable
		}
		matcher = fuzzy
	default:
		matcher = Subsequence{}
	}

	matches, err := matcher.Search(q, ix.documents())
	if err != nil {
		return nil, err
	}

	out := make([]favorites.Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, ix.entries[m.Index])
	}
	return out, nil
}
