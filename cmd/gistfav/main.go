package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gistfav/gistfav/internal/app"
	"github.com/gistfav/gistfav/internal/config"
	"github.com/gistfav/gistfav/internal/gist"
	"github.com/gistfav/gistfav/internal/logging"
	"github.com/gistfav/gistfav/internal/onboard"
	"github.com/gistfav/gistfav/internal/search"
	"github.com/gistfav/gistfav/internal/tokenstore"
	"github.com/gistfav/gistfav/internal/tui"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags override the config file and environment.
type globalFlags struct {
	gistID  string
	owner   string
	file    string
	verbose bool
}

// runtime is what PersistentPreRunE builds for every command.
type runtime struct {
	// fileCfg is the config file as loaded, cfg has env and flags applied.
	fileCfg config.Config
	cfg     config.Config
	flags   globalFlags
	logger  *zap.Logger
	tokens  *tokenstore.FileStore
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	rt := &runtime{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "gistfav",
		Short: "Browse and add favorite links stored in a GitHub Gist",
		Long: `gistfav keeps a list of favorite links in a JSON file inside a GitHub Gist.

Run without arguments to start the interactive browser. Reading needs no
credentials; adding favorites needs a GitHub token with the gist scope.

Configuration is stored in ~/.config/gistfav (override with GISTFAV_CONFIG_DIR).
Settings priority: flag > environment (.env is loaded) > config file > defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal, so only subcommands log to stderr.
			return rt.setup(flags, cmd != cmd.Root())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = rt.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, rt)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.gistID, "gist-id", "", "gist holding the favorites")
	pf.StringVar(&flags.owner, "owner", "", "GitHub user owning the gist")
	pf.StringVar(&flags.file, "file", "", "file inside the gist (default data.json)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging (to stderr for subcommands)")

	root.AddCommand(
		newListCmd(rt),
		newSearchCmd(rt),
		newAddCmd(rt),
		newTokenCmd(rt),
		newInitCmd(rt),
		newUpdateCmd(),
		newVersionCmd(),
	)
	return root
}

func (rt *runtime) setup(flags globalFlags, stderr bool) error {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	rt.fileCfg = cfg
	rt.flags = flags
	rt.applyOverrides(&cfg)
	rt.cfg = cfg

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.LogFile(),
		Stderr:  stderr && flags.verbose,
		Verbose: flags.verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	rt.logger = logger
	rt.tokens = tokenstore.NewFileStore(config.TokenFile())
	return nil
}

// applyOverrides layers the environment and flags over cfg.
func (rt *runtime) applyOverrides(cfg *config.Config) {
	config.ApplyEnv(cfg)
	applyFlags(cfg, rt.flags)
}

// runOnboarding runs the setup prompts on the config file contents, so the saved
// file never picks up environment or flag overrides.
func (rt *runtime) runOnboarding(stdin io.Reader, stdout io.Writer) error {
	r := onboard.NewRunner(rt.fileCfg, rt.tokens)
	r.Overrides = rt.applyOverrides
	if stdin != nil {
		r.Stdin = stdin
	}
	if stdout != nil {
		r.Stdout = stdout
	}
	res, err := r.Run()
	if err != nil {
		return err
	}
	rt.fileCfg = res.Config
	rt.cfg = res.Config
	rt.applyOverrides(&rt.cfg)
	return nil
}

func applyFlags(cfg *config.Config, flags globalFlags) {
	if flags.gistID != "" {
		cfg.Gist.ID = flags.gistID
	}
	if flags.owner != "" {
		cfg.Gist.Owner = flags.owner
	}
	if flags.file != "" {
		cfg.Gist.Filename = flags.file
	}
}

// library wires the gist client, token store and fuzzy engine into an
// app.Library. A non-nil tokens replaces the stored token slot.
func (rt *runtime) library(tokens tokenstore.Store) (*app.Library, error) {
	if err := rt.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config (run 'gistfav init'): %w", err)
	}
	timeout, err := rt.cfg.Timeout()
	if err != nil {
		return nil, err
	}

	client := gist.New(gist.Config{
		Owner:      rt.cfg.Gist.Owner,
		GistID:     rt.cfg.Gist.ID,
		Filename:   rt.cfg.Gist.Filename,
		RawBaseURL: rt.cfg.Gist.RawURL,
		APIBaseURL: rt.cfg.Gist.APIURL,
		Timeout:    timeout,
		Logger:     rt.logger,
	})

	fuzzy, err := search.NewFuzzy(rt.cfg.Search.FuzzyEngine, rt.cfg.Search.FuzzyMinScore)
	if err != nil {
		rt.logger.Warn("fuzzy search disabled", zap.Error(err))
		fuzzy = nil
	}

	if tokens == nil {
		tokens = rt.tokens
	}
	return app.New(app.Options{
		Remote: client,
		Tokens: tokens,
		Fuzzy:  fuzzy,
		Logger: rt.logger.Named("app"),
	}), nil
}

func (rt *runtime) mode() search.Mode {
	mode, err := search.ParseMode(rt.cfg.Search.Mode)
	if err != nil {
		rt.logger.Warn("unknown search mode, using exact", zap.String("mode", rt.cfg.Search.Mode))
		return search.Exact
	}
	return mode
}

func runTUI(cmd *cobra.Command, rt *runtime) error {
	// First run: onboarding
	if config.IsFirstRun() {
		if err := rt.runOnboarding(nil, nil); err != nil {
			return err
		}
	}

	lib, err := rt.library(nil)
	if err != nil {
		return err
	}

	model := tui.New(tui.Options{
		Backend: lib,
		Mode:    rt.mode(),
		Version: version,
		Logger:  rt.logger.Named("tui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
