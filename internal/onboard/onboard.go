package onboard

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gistfav/gistfav/internal/config"
	"github.com/gistfav/gistfav/internal/gist"
	"github.com/gistfav/gistfav/internal/tokenstore"
)

// Result holds the outcome of the onboarding flow.
type Result struct {
	Config     config.Config
	Count      int // favorites found in the gist, -1 if it could not be read
	TokenSaved bool
}

// Runner encapsulates onboarding dependencies for testability.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	// Base holds the prefilled values and is what gets saved; pass the
	// config file contents, not the environment or flag overrides.
	Base config.Config
	// Overrides, if set, adjusts a copy of the answers used only for the
	// readability check, so session overrides are honoured but not saved.
	Overrides  func(*config.Config)
	Tokens     tokenstore.Store
	HTTPClient *http.Client
}

// NewRunner creates a Runner with default stdin/stdout.
func NewRunner(base config.Config, tokens tokenstore.Store) *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Base:   base,
		Tokens: tokens,
	}
}

// ParseGistRef accepts either a bare gist id or a gist URL such as
// https://gist.github.com/<owner>/<id> or a raw content URL, and returns the
// owner (possibly empty) and id.
func ParseGistRef(ref string) (owner, id string) {
	ref = strings.TrimSpace(ref)
	if !strings.Contains(ref, "/") {
		return "", ref
	}
	if u, err := url.Parse(ref); err == nil && u.Host != "" {
		ref = u.Path
	}
	parts := strings.FieldsFunc(ref, func(r rune) bool { return r == '/' })
	// Raw content URLs continue with /raw/[<revision>/]<file>.
	for i, p := range parts {
		if p == "raw" && i >= 1 {
			parts = parts[:i]
			break
		}
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return parts[len(parts)-2], parts[len(parts)-1]
	}
}

// Run executes the first-run onboarding flow.
func (r *Runner) Run() (*Result, error) {
	w := r.Stdout
	scanner := bufio.NewScanner(r.Stdin)
	ask := func(prompt, def string) string {
		if def != "" {
			fmt.Fprintf(w, "  %s [%s]: ", prompt, def)
		} else {
			fmt.Fprintf(w, "  %s: ", prompt)
		}
		var answer string
		if scanner.Scan() {
			answer = strings.TrimSpace(scanner.Text())
		}
		if answer == "" {
			return def
		}
		return answer
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  Welcome to gistfav!")
	fmt.Fprintln(w, "  Your favorites live in a GitHub Gist.")
	fmt.Fprintln(w, "")

	cfg := r.Base

	// Step 1: Locate the gist
	ref := ask("Gist URL or id", cfg.Gist.ID)
	owner, id := ParseGistRef(ref)
	if id == "" {
		return nil, fmt.Errorf("a gist id is required")
	}
	cfg.Gist.ID = id
	if owner == "" {
		owner = cfg.Gist.Owner
	}
	cfg.Gist.Owner = ask("Gist owner (GitHub user name)", owner)
	if cfg.Gist.Owner == "" {
		return nil, fmt.Errorf("a gist owner is required")
	}
	cfg.Gist.Filename = ask("File in the gist", cfg.Gist.Filename)

	// Step 2: Check the gist is readable
	fmt.Fprint(w, "  Checking gist... ")
	check := cfg
	if r.Overrides != nil {
		r.Overrides(&check)
	}
	timeout, err := check.Timeout()
	if err != nil {
		return nil, err
	}
	client := gist.New(gist.Config{
		Owner:      check.Gist.Owner,
		GistID:     check.Gist.ID,
		Filename:   check.Gist.Filename,
		RawBaseURL: check.Gist.RawURL,
		APIBaseURL: check.Gist.APIURL,
		Timeout:    timeout,
		HTTPClient: r.HTTPClient,
	})
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	count := -1
	entries, err := client.FetchAll(ctx)
	if err != nil {
		fmt.Fprintln(w, "failed.")
		fmt.Fprintf(w, "  %v\n", err)
		if !strings.EqualFold(ask("Save this configuration anyway? (y/N)", ""), "y") {
			return nil, fmt.Errorf("gist not readable: %w", err)
		}
	} else {
		count = len(entries)
		fmt.Fprintf(w, "found %d favorites.\n", count)
	}

	// Step 3: Optional token for adding entries
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  Adding favorites needs a GitHub token with the 'gist' scope.")
	tokenSaved := false
	if tok := ask("Token (press Enter to skip)", ""); tok != "" && r.Tokens != nil {
		if err := r.Tokens.Set(tok); err != nil {
			return nil, fmt.Errorf("saving token: %w", err)
		}
		tokenSaved = true
	}

	// Step 4: Save config
	if err := config.Save(cfg); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "  Config: %s\n", config.ConfigFile())
	fmt.Fprintln(w, "  Setup complete!")

	return &Result{
		Config:     cfg,
		Count:      count,
		TokenSaved: tokenSaved,
	}, nil
}
