package gist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gistfav/gistfav/internal/favorites"
)

// MaxBodySize is the maximum number of bytes read from the raw endpoint.
const MaxBodySize = 4 << 20

// RawURL returns the public, cache-busted URL of the gist file.
func (c *Client) RawURL() string {
	u := fmt.Sprintf("%s/%s/%s/raw/%s",
		strings.TrimSuffix(c.cfg.RawBaseURL, "/"),
		url.PathEscape(c.cfg.Owner),
		url.PathEscape(c.cfg.GistID),
		url.PathEscape(c.cfg.Filename),
	)
	return u + "?t=" + strconv.FormatInt(c.now().UnixMilli(), 10)
}

// FetchAll downloads the whole collection from the raw content host.
func (c *Client) FetchAll(ctx context.Context) ([]favorites.Entry, error) {
	rawURL := c.RawURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching favorites", zap.String("url", rawURL))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteRead, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRemoteRead, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRemoteRead, err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrRemoteRead, MaxBodySize)
	}

	entries, err := decodeEntries(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched favorites", zap.Int("count", len(entries)))
	return entries, nil
}

func decodeEntries(data []byte) ([]favorites.Entry, error) {
	var entries []favorites.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRemoteData, err)
	}
	// A literal null decodes without error.
	if entries == nil {
		return nil, fmt.Errorf("%w: got null", ErrMalformedRemoteData)
	}
	return entries, nil
}
