package gist

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gistfav/gistfav/internal/favorites"
)

// Default hosts for the public raw endpoint and the authenticated API.
const (
	DefaultRawBaseURL = "https://gist.githubusercontent.com"
	DefaultAPIBaseURL = "https://api.github.com"
)

// Errors returned by the client. Each wraps the underlying cause, so callers
// can also match transport errors such as context.Canceled.
var (
	ErrRemoteRead          = errors.New("reading favorites failed")
	ErrMissingToken        = errors.New("no access token set")
	ErrAuth                = errors.New("reading gist with token failed, check token permissions")
	ErrMalformedRemoteData = errors.New("gist content is not a JSON array")
	ErrRemoteWrite         = errors.New("updating gist failed")
)

// Store is the remote collection: a full read and a single-entry append.
type Store interface {
	FetchAll(ctx context.Context) ([]favorites.Entry, error)
	Append(ctx context.Context, entry favorites.Entry, token string) error
}

// Config locates the gist file holding the collection.
type Config struct {
	Owner    string
	GistID   string
	Filename string

	RawBaseURL string
	APIBaseURL string
	Timeout    time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to a single gist file. Reads go through the raw content host
// and need no credentials; appends go through the REST API with a token.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
	now    func() time.Time
}

var _ Store = (*Client)(nil)

// New creates a Client. Empty hosts fall back to GitHub's public ones.
func New(cfg Config) *Client {
	if cfg.RawBaseURL == "" {
		cfg.RawBaseURL = DefaultRawBaseURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:    cfg,
		http:   hc,
		logger: logger.Named("gist"),
		now:    time.Now,
	}
}
