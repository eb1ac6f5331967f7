package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gistfav/gistfav/internal/favorites"
	"github.com/gistfav/gistfav/internal/gist"
	"github.com/gistfav/gistfav/internal/search"
	"github.com/gistfav/gistfav/internal/tokenstore"
	"github.com/gistfav/gistfav/internal/update"
)

func newListCmd(rt *runtime) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print all favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := rt.library(nil)
			if err != nil {
				return err
			}
			entries, err := lib.Reload(cmd.Context())
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array")
	return cmd
}

func newSearchCmd(rt *runtime) *cobra.Command {
	var (
		fuzzy  bool
		exact  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print favorites matching a query",
		Long: `Print favorites matching a query.

Exact mode keeps favorites whose "name url description" text contains the
query's characters in order (case-insensitive). Fuzzy mode ranks favorites by
match score. Without --exact or --fuzzy the configured search.mode is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fuzzy && exact {
				return errors.New("--fuzzy and --exact are mutually exclusive")
			}
			mode := rt.mode()
			switch {
			case fuzzy:
				mode = search.Fuzzy
			case exact:
				mode = search.Exact
			}

			lib, err := rt.library(nil)
			if err != nil {
				return err
			}
			if _, err := lib.Reload(cmd.Context()); err != nil {
				return err
			}
			results, err := lib.Filter(strings.Join(args, " "), mode)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), results, asJSON)
		},
	}
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "rank by fuzzy score")
	cmd.Flags().BoolVar(&exact, "exact", false, "ordered-subsequence match")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array")
	return cmd
}

func newAddCmd(rt *runtime) *cobra.Command {
	var (
		entry favorites.Entry
		token string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a favorite to the gist",
		Long: `Append a favorite to the gist.

Needs a GitHub token with the gist scope, either stored with 'gistfav token set'
or passed with --token. Two clients adding at the same moment can lose one of
the entries; re-run 'gistfav list' to check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tokens tokenstore.Store
			if token != "" {
				tokens = tokenstore.NewMemory(token)
			}
			lib, err := rt.library(tokens)
			if err != nil {
				return err
			}
			if err := lib.Add(cmd.Context(), entry); err != nil {
				if errors.Is(err, gist.ErrMissingToken) {
					return fmt.Errorf("%w (store one with 'gistfav token set <token>')", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q. The gist now holds %d favorites.\n",
				entry.Normalize().Name, len(lib.Entries()))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&entry.Name, "name", "", "display name (required)")
	f.StringVar(&entry.URL, "url", "", "http or https link (required)")
	f.StringVar(&entry.Description, "description", "", "optional description")
	f.StringVar(&token, "token", "", "GitHub token for this call only")
	return cmd
}

func newTokenCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored GitHub token",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <token>",
			Short: "Store a GitHub token with the gist scope",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := rt.tokens.Set(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", rt.tokens.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the stored token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := rt.tokens.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Token cleared.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether a token is stored",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				tok, err := rt.tokens.Get()
				if err != nil {
					return err
				}
				if tok == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No token stored. Adding favorites is disabled.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Token stored in %s\n", rt.tokens.Path())
				return nil
			},
		},
	)
	return cmd
}

func newInitCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Set up (or redo) the gist configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runOnboarding(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update gistfav to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runUpdate(ctx context.Context, w io.Writer) error {
	if version == "dev" {
		fmt.Fprintln(w, "Auto-update is not available for development builds.")
		return nil
	}
	fmt.Fprintln(w, "Checking for updates...")
	res, err := update.Apply(ctx, version)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if res.Applied {
		fmt.Fprintf(w, "Updated to v%s. Restart gistfav to use the new version.\n", res.LatestVersion)
	} else {
		fmt.Fprintln(w, "Already running the latest version.")
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gistfav %s\n", version)
		},
	}
}

func printEntries(w io.Writer, entries []favorites.Entry, asJSON bool) error {
	if asJSON {
		if entries == nil {
			entries = []favorites.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No favorites found.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(w, e.Name)
		fmt.Fprintf(w, "  %s\n", e.URL)
		if e.Description != "" {
			fmt.Fprintf(w, "  %s\n", e.Description)
		}
	}
	return nil
}
