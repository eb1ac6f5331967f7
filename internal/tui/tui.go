package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/gistfav/gistfav/internal/app"
	"github.com/gistfav/gistfav/internal/favorites"
	"github.com/gistfav/gistfav/internal/search"
	"github.com/gistfav/gistfav/internal/update"
)

// Backend is the application state the TUI drives. *app.Library implements it.
type Backend interface {
	Reload(ctx context.Context) ([]favorites.Entry, error)
	Entries() []favorites.Entry
	Filter(query string, mode search.Mode) ([]favorites.Entry, error)
	FuzzyAvailable() bool
	Add(ctx context.Context, entry favorites.Entry) error
	HasToken() bool
	SetToken(token string) error
	ClearToken() error
}

var _ Backend = (*app.Library)(nil)

// Options configures the TUI.
type Options struct {
	Backend Backend
	Mode    search.Mode
	Version string
	Logger  *zap.Logger
}

// LoadedMsg carries the result of a reload.
type LoadedMsg struct {
	Entries []favorites.Entry
	Err     error
}

// AddedMsg carries the result of adding a favorite.
type AddedMsg struct {
	Entry favorites.Entry
	Err   error
}

// UpdateCheckMsg carries the result of a background update check.
type UpdateCheckMsg struct {
	Result *update.Result
	Err    error
}

// UpdateApplyMsg carries the result of an update apply.
type UpdateApplyMsg struct {
	Result *update.Result
	Err    error
}

// Model is the Bubble Tea model for the favorites browser.
type Model struct {
	options Options
	logger  *zap.Logger

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int

	mode      search.Mode
	results   []favorites.Entry
	total     int
	cursor    int
	filterErr error

	loading bool
	loaded  bool
	loadErr error

	// hasToken mirrors Backend.HasToken so rendering does no I/O.
	hasToken bool

	// overlay replaces the card list with rendered markdown (help, details).
	overlay string
	modal   *modal

	notice    string
	noticeErr bool

	mdRenderer *glamour.TermRenderer
	ready      bool
	quitting   bool
}

// New creates a new TUI model. The first reload starts from Init.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search favorites... (/help for commands)"
	ti.Prompt = inputPromptStyle.Render("> ")
	ti.CharLimit = 256
	ti.Focus()

	vp := viewport.New(80, 20)
	// Keys belong to the search box; the list scrolls with the cursor.
	vp.KeyMap = viewport.KeyMap{}

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedNameStyle

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		options:    opts,
		logger:     logger,
		input:      ti,
		viewport:   vp,
		spinner:    sp,
		mode:       opts.Mode,
		mdRenderer: renderer,
		loading:    true,
	}
	m.refreshToken()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, reloadCmd(m.options.Backend))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.modal != nil {
			return m.handleModalKey(msg)
		}
		switch msg.Type {
		case tea.KeyEnter:
			return m.handleSubmit()
		case tea.KeyTab:
			m.mode = m.mode.Toggle()
			m.applyFilter()
			return m, nil
		case tea.KeyCtrlR:
			return m, m.startReload()
		case tea.KeyCtrlN:
			return m, m.openModal()
		case tea.KeyUp:
			m.moveCursor(-1)
			return m, nil
		case tea.KeyDown:
			m.moveCursor(1)
			return m, nil
		case tea.KeyEsc:
			if m.overlay != "" {
				m.overlay = ""
			} else {
				m.input.Reset()
				m.applyFilter()
			}
			m.refreshViewport()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// status bar, search line, separator, footer
		viewH := m.height - 4
		if viewH < 1 {
			viewH = 1
		}
		m.viewport.Width = m.width
		m.viewport.Height = viewH
		m.input.Width = m.width - 12

		if !m.ready {
			m.ready = true
			// Background update check (only for release builds)
			if v := m.options.Version; v != "" && v != "dev" {
				cmds = append(cmds, m.checkForUpdate())
			}
		}
		m.refreshViewport()

	case LoadedMsg:
		if errors.Is(msg.Err, app.ErrSuperseded) {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.loadErr = msg.Err
			m.setError(fmt.Sprintf("Reload failed: %v", msg.Err))
		} else {
			m.loadErr = nil
			m.loaded = true
		}
		m.applyFilter()
		return m, nil

	case AddedMsg:
		return m.handleAdded(msg)

	case UpdateCheckMsg:
		if msg.Err == nil && msg.Result != nil && msg.Result.UpdateAvailable {
			m.setNotice(fmt.Sprintf("Update available: v%s → v%s. Run /update to upgrade.", msg.Result.CurrentVersion, msg.Result.LatestVersion))
		}
		return m, nil

	case UpdateApplyMsg:
		switch {
		case msg.Err != nil:
			m.setError(fmt.Sprintf("Update failed: %v", msg.Err))
		case msg.Result.Applied:
			m.setNotice(fmt.Sprintf("Updated to v%s. Restart gistfav to use the new version.", msg.Result.LatestVersion))
		default:
			m.setNotice("Already running the latest version.")
		}
		return m, nil

	case spinner.TickMsg:
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		if m.loading || (m.modal != nil && m.modal.submitting) {
			m.refreshViewport()
			return m, spCmd
		}
		return m, nil
	}

	if m.modal != nil {
		cmd := m.modal.updateFocused(msg)
		return m, cmd
	}

	before := m.input.Value()
	var tiCmd tea.Cmd
	m.input, tiCmd = m.input.Update(msg)
	cmds = append(cmds, tiCmd)
	if m.input.Value() != before {
		m.overlay = ""
		m.applyFilter()
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Initializing..."
	}

	status := StatusBar(len(m.results), m.total, m.mode, m.hasToken, m.options.Version, m.width)
	searchLine := m.input.View() + modeTagStyle.Render("["+m.mode.String()+"]")
	separator := lipgloss.NewStyle().
		Foreground(secondaryColor).
		Width(m.width).
		Render(strings.Repeat("─", m.width))

	body := m.viewport.View()
	if m.modal != nil {
		body = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, m.modal.view(m.spinner.View()))
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		status,
		searchLine,
		separator,
		body,
		m.footer(),
	)
}

func (m Model) footer() string {
	switch {
	case m.notice != "" && m.noticeErr:
		return errorStyle.Render(m.notice)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	default:
		return placeholderStyle.Render("tab mode · ctrl+r reload · ctrl+n add · enter details · /help")
	}
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())

	// Check for slash command
	if cmd := ParseCommand(input); cmd != nil {
		m.input.Reset()
		m.applyFilter()
		return m.handleCommand(cmd)
	}

	if len(m.results) == 0 {
		return m, nil
	}
	m.overlay = m.renderMarkdown(detailMarkdown(m.results[m.cursor]))
	m.refreshViewport()
	return m, nil
}

func (m *Model) refreshToken() {
	m.hasToken = m.options.Backend.HasToken()
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeErr = false
}

func (m *Model) setError(s string) {
	m.notice = s
	m.noticeErr = true
}

// startReload marks the list as loading and fetches the collection. Older
// reloads still in flight are cancelled by the backend.
func (m *Model) startReload() tea.Cmd {
	if m.loading {
		return reloadCmd(m.options.Backend)
	}
	m.loading = true
	m.refreshViewport()
	return tea.Batch(reloadCmd(m.options.Backend), m.spinner.Tick)
}

func reloadCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		entries, err := b.Reload(context.Background())
		return LoadedMsg{Entries: entries, Err: err}
	}
}

// applyFilter recomputes the visible cards from the backend's current
// collection. Slash commands being typed leave the list alone.
func (m *Model) applyFilter() {
	query := m.input.Value()
	if strings.HasPrefix(strings.TrimSpace(query), "/") {
		return
	}
	m.total = len(m.options.Backend.Entries())
	results, err := m.options.Backend.Filter(query, m.mode)
	m.filterErr = err
	if err != nil {
		m.logger.Debug("filter failed", zap.String("mode", m.mode.String()), zap.Error(err))
		results = nil
	}
	m.results = results
	if m.cursor >= len(m.results) {
		m.cursor = len(m.results) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshViewport()
}

func (m *Model) moveCursor(delta int) {
	if m.overlay != "" {
		m.viewport.SetYOffset(m.viewport.YOffset + delta)
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.results) {
		return
	}
	m.cursor = next
	m.refreshViewport()
}

func (m *Model) renderMarkdown(content string) string {
	if m.mdRenderer == nil {
		return content
	}
	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(rendered)
}

func detailMarkdown(e favorites.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n<%s>\n", e.Name, e.URL)
	if e.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Description)
	}
	return b.String()
}

// placeholder returns the text shown instead of cards, or "" when there are
// cards to show.
func (m *Model) placeholder() string {
	switch {
	case m.loading && !m.loaded:
		return m.spinner.View() + " Loading favorites..."
	case m.loadErr != nil && !m.loaded:
		return errorStyle.Render(fmt.Sprintf("Could not load favorites: %v", m.loadErr)) +
			"\n" + placeholderStyle.Render("Press ctrl+r to retry.")
	case m.filterErr != nil:
		msg := fmt.Sprintf("Search failed: %v", m.filterErr)
		if errors.Is(m.filterErr, search.ErrFuzzyUnavailable) {
			msg = "Fuzzy search is unavailable. Press tab for exact search."
		}
		return errorStyle.Render(msg)
	case m.total == 0:
		return placeholderStyle.Render("No favorites yet. Press ctrl+n to add one.")
	case len(m.results) == 0:
		return placeholderStyle.Render("No favorites match your search.")
	}
	return ""
}

func (m *Model) refreshViewport() {
	if m.overlay != "" {
		m.viewport.SetContent(m.overlay)
		return
	}
	if p := m.placeholder(); p != "" {
		m.viewport.SetContent(p)
		m.viewport.GotoTop()
		return
	}

	var lines []string
	cursorTop, cursorBottom := 0, 0
	for i, e := range m.results {
		if i == m.cursor {
			cursorTop = len(lines)
		}
		name := cardNameStyle.Render("  " + e.Name)
		if i == m.cursor {
			name = selectedNameStyle.Render("▸ " + e.Name)
		}
		lines = append(lines, name, "  "+cardURLStyle.Render(e.URL))
		if e.Description != "" {
			lines = append(lines, lipgloss.NewStyle().Width(m.width).Render("  "+cardDescStyle.Render(e.Description)))
		}
		if i == m.cursor {
			cursorBottom = len(lines)
		}
		lines = append(lines, "")
	}
	if m.loading {
		lines = append(lines, m.spinner.View()+" Reloading...")
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	// Keep the selected card on screen.
	if cursorTop < m.viewport.YOffset {
		m.viewport.SetYOffset(cursorTop)
	} else if h := m.viewport.Height; h > 0 && cursorBottom > m.viewport.YOffset+h {
		m.viewport.SetYOffset(cursorBottom - h)
	}
}

func (m *Model) checkForUpdate() tea.Cmd {
	version := m.options.Version
	return func() tea.Msg {
		res, err := update.Check(context.Background(), version)
		return UpdateCheckMsg{Result: res, Err: err}
	}
}
