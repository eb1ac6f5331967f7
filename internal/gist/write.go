package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v74/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gistfav/gistfav/internal/favorites"
)

// Append adds entry to the end of the remote array with a read-modify-write
// cycle. Two appends racing against the same gist can each overwrite the
// other's entry; there is no conditional write to prevent it.
func (c *Client) Append(ctx context.Context, entry favorites.Entry, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}

	gh, err := c.apiClient(ctx, token)
	if err != nil {
		return err
	}

	g, resp, err := gh.Gists.Get(ctx, c.cfg.GistID)
	if err != nil {
		if code := statusCode(resp); code != 0 {
			return fmt.Errorf("%w: HTTP %d: %w", ErrAuth, code, err)
		}
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}

	file, ok := g.Files[github.GistFilename(c.cfg.Filename)]
	if !ok || file.Content == nil {
		return fmt.Errorf("%w: file %q not found in gist", ErrMalformedRemoteData, c.cfg.Filename)
	}

	content, err := appendToContent(file.GetContent(), entry)
	if err != nil {
		return err
	}

	c.logger.Info("writing gist",
		zap.String("gist", c.cfg.GistID),
		zap.String("file", c.cfg.Filename),
		zap.String("name", entry.Name))

	_, resp, err = gh.Gists.Edit(ctx, c.cfg.GistID, &github.Gist{
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(c.cfg.Filename): {Content: github.Ptr(content)},
		},
	})
	if err != nil {
		if code := statusCode(resp); code != 0 {
			return fmt.Errorf("%w: HTTP %d: %w", ErrRemoteWrite, code, err)
		}
		return fmt.Errorf("%w: %w", ErrRemoteWrite, err)
	}
	return nil
}

// apiClient builds a REST client whose requests carry "Authorization: token <token>".
func (c *Client) apiClient(ctx context.Context, token string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "token"})
	hc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.http), ts)

	base, err := url.Parse(strings.TrimSuffix(c.cfg.APIBaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	gh := github.NewClient(hc)
	gh.BaseURL = base
	return gh, nil
}

// appendToContent parses content as a JSON array, appends entry and returns
// the array pretty-printed with a four-space indent. Existing elements are
// carried as raw JSON so fields unknown to Entry are preserved.
func appendToContent(content string, entry favorites.Entry) (string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedRemoteData, err)
	}
	if items == nil {
		return "", fmt.Errorf("%w: got null", ErrMalformedRemoteData)
	}

	raw, err := marshal(entry, "")
	if err != nil {
		return "", fmt.Errorf("encoding entry: %w", err)
	}
	items = append(items, raw)

	out, err := marshal(items, "    ")
	if err != nil {
		return "", fmt.Errorf("encoding gist content: %w", err)
	}
	return string(out), nil
}

// marshal encodes v without HTML escaping, so URLs keep their '&'.
func marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
