// Package app holds the in-memory favorites state and the operations the
// user interfaces trigger: reload, filter, add and token management.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gistfav/gistfav/internal/favorites"
	"github.com/gistfav/gistfav/internal/gist"
	"github.com/gistfav/gistfav/internal/search"
	"github.com/gistfav/gistfav/internal/tokenstore"
)

var (
	// ErrSuperseded is returned by a Reload that a newer Reload replaced.
	// The result was discarded; callers should ignore it.
	ErrSuperseded = errors.New("reload superseded by a newer one")

	// ErrAddInProgress is returned when Add is called while another Add from
	// this Library is still running.
	ErrAddInProgress = errors.New("an entry is already being saved")
)

// Options configures a Library.
type Options struct {
	Remote gist.Store
	Tokens tokenstore.Store
	// Fuzzy is the fuzzy search engine; nil means fuzzy search is unavailable.
	Fuzzy  search.Matcher
	Logger *zap.Logger
}

// Library is the application state: the last loaded collection, its search
// index and the collaborators that read and write it.
type Library struct {
	remote gist.Store
	tokens tokenstore.Store
	fuzzy  search.Matcher
	logger *zap.Logger

	mu         sync.Mutex
	index      *search.Index
	loaded     bool
	loadGen    uint64
	cancelLoad context.CancelFunc
	adding     bool
}

// New creates a Library with an empty collection.
func New(opts Options) *Library {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = tokenstore.NewMemory("")
	}
	return &Library{
		remote: opts.Remote,
		tokens: tokens,
		fuzzy:  opts.Fuzzy,
		logger: logger,
		index:  search.NewIndex(nil),
	}
}

// Reload fetches the whole collection and replaces the in-memory copy. Any
// reload still in flight is cancelled, and its result is dropped even if its
// fetch completes afterwards.
func (l *Library) Reload(ctx context.Context) ([]favorites.Entry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.cancelLoad != nil {
		l.cancelLoad()
	}
	l.loadGen++
	gen := l.loadGen
	l.cancelLoad = cancel
	l.mu.Unlock()

	entries, err := l.remote.FetchAll(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.loadGen {
		l.logger.Debug("discarding superseded reload", zap.Uint64("gen", gen))
		return nil, ErrSuperseded
	}
	l.cancelLoad = nil

	if err != nil {
		l.logger.Warn("reload failed", zap.Error(err))
		return nil, err
	}

	entries = favorites.Clone(entries)
	if entries == nil {
		entries = []favorites.Entry{}
	}
	l.index = search.NewIndex(entries)
	l.loaded = true
	l.logger.Info("favorites loaded", zap.Int("count", len(entries)))
	return favorites.Clone(entries), nil
}

// Entries returns a copy of the current collection.
func (l *Library) Entries() []favorites.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return favorites.Clone(l.index.Entries())
}

// Loaded reports whether at least one reload has succeeded.
func (l *Library) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// FuzzyAvailable reports whether a fuzzy engine is configured.
func (l *Library) FuzzyAvailable() bool {
	return l.fuzzy != nil
}

// Filter searches the current collection.
func (l *Library) Filter(query string, mode search.Mode) ([]favorites.Entry, error) {
	l.mu.Lock()
	ix := l.index
	l.mu.Unlock()

	results, err := ix.Filter(query, mode, l.fuzzy)
	if err != nil {
		return nil, err
	}
	return favorites.Clone(results), nil
}

// Add validates entry, appends it to the remote collection and reloads.
// Reloads started meanwhile do not cancel the append.
func (l *Library) Add(ctx context.Context, entry favorites.Entry) error {
	entry = entry.Normalize()
	if err := entry.Validate(); err != nil {
		return err
	}

	token, err := l.tokens.Get()
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	if token == "" {
		return gist.ErrMissingToken
	}

	l.mu.Lock()
	if l.adding {
		l.mu.Unlock()
		return ErrAddInProgress
	}
	l.adding = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.adding = false
		l.mu.Unlock()
	}()

	if err := l.remote.Append(ctx, entry, token); err != nil {
		l.logger.Warn("append failed", zap.String("name", entry.Name), zap.Error(err))
		return err
	}
	l.logger.Info("favorite added", zap.String("name", entry.Name), zap.String("url", entry.URL))

	if _, err := l.Reload(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("entry saved, but reloading failed: %w", err)
	}
	return nil
}

// HasToken reports whether a token is stored.
func (l *Library) HasToken() bool {
	tok, err := l.tokens.Get()
	return err == nil && tok != ""
}

// SetToken stores the access token.
func (l *Library) SetToken(token string) error {
	return l.tokens.Set(token)
}

// ClearToken removes the stored access token.
func (l *Library) ClearToken() error {
	return l.tokens.Clear()
}
