package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gistfav/gistfav/internal/favorites"
	"github.com/gistfav/gistfav/internal/gist"
	"github.com/gistfav/gistfav/internal/search"
	"github.com/gistfav/gistfav/internal/update"
)

type commandHandler func(m *Model, args string) (tea.Model, tea.Cmd)

var commands = map[string]commandHandler{
	"help":   handleHelp,
	"quit":   handleQuit,
	"exit":   handleQuit,
	"reload": handleReload,
	"mode":   handleMode,
	"add":    handleAdd,
	"token":  handleToken,
	"logout": handleLogout,
	"update": handleUpdate,
}

func (m *Model) handleCommand(cmd *Command) (tea.Model, tea.Cmd) {
	h, ok := commands[cmd.Name]
	if !ok {
		m.setError(fmt.Sprintf("Unknown command: /%s. Type /help for a list.", cmd.Name))
		return m, nil
	}
	return h(m, cmd.Args)
}

func handleQuit(m *Model, args string) (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func handleHelp(m *Model, args string) (tea.Model, tea.Cmd) {
	m.overlay = m.renderMarkdown(HelpText())
	m.refreshViewport()
	m.viewport.GotoTop()
	return m, nil
}

func handleReload(m *Model, args string) (tea.Model, tea.Cmd) {
	return m, m.startReload()
}

func handleMode(m *Model, args string) (tea.Model, tea.Cmd) {
	if args == "" {
		m.setNotice(fmt.Sprintf("Search mode: %s. Usage: /mode exact|fuzzy", m.mode))
		return m, nil
	}
	mode, err := search.ParseMode(args)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	if mode == search.Fuzzy && !m.options.Backend.FuzzyAvailable() {
		m.setError("Fuzzy search is unavailable.")
		return m, nil
	}
	m.mode = mode
	m.setNotice(fmt.Sprintf("Search mode: %s", mode))
	m.applyFilter()
	return m, nil
}

func handleAdd(m *Model, args string) (tea.Model, tea.Cmd) {
	return m, m.openModal()
}

func handleToken(m *Model, args string) (tea.Model, tea.Cmd) {
	if args == "" {
		m.modal = newTokenModal()
		m.input.Blur()
		return m, textinput.Blink
	}
	err := m.options.Backend.SetToken(args)
	m.refreshToken()
	if err != nil {
		m.setError(fmt.Sprintf("Saving token: %v", err))
		return m, nil
	}
	m.setNotice("Token saved.")
	return m, nil
}

func handleLogout(m *Model, args string) (tea.Model, tea.Cmd) {
	err := m.options.Backend.ClearToken()
	m.refreshToken()
	if err != nil {
		m.setError(fmt.Sprintf("Clearing token: %v", err))
		return m, nil
	}
	m.setNotice("Token cleared.")
	return m, nil
}

func handleUpdate(m *Model, args string) (tea.Model, tea.Cmd) {
	version := m.options.Version
	if version == "" || version == "dev" {
		m.setError("Updates are only available for release builds.")
		return m, nil
	}
	m.setNotice("Checking for updates...")
	return m, func() tea.Msg {
		res, err := update.Apply(context.Background(), version)
		return UpdateApplyMsg{Result: res, Err: err}
	}
}

type modalKind int

const (
	tokenModal modalKind = iota
	addModal
)

// modal is the overlay form for storing a token or adding a favorite.
type modal struct {
	kind       modalKind
	fields     []textinput.Model
	labels     []string
	focus      int
	submitting bool
	err        error
}

func newTokenModal() *modal {
	ti := textinput.New()
	ti.Placeholder = "ghp_..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Width = 40
	ti.Focus()
	return &modal{
		kind:   tokenModal,
		fields: []textinput.Model{ti},
		labels: []string{"GitHub token (gist scope)"},
	}
}

func newAddModal() *modal {
	labels := []string{"Name", "URL", "Description (optional)"}
	placeholders := []string{"Go", "https://go.dev", "The Go programming language"}
	fields := make([]textinput.Model, len(labels))
	for i := range fields {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Width = 40
		ti.CharLimit = 1024
		fields[i] = ti
	}
	fields[0].Focus()
	return &modal{
		kind:   addModal,
		fields: fields,
		labels: labels,
	}
}

// openModal shows the add form, or the token form when no token is stored.
func (m *Model) openModal() tea.Cmd {
	m.refreshToken()
	if m.hasToken {
		m.modal = newAddModal()
	} else {
		m.modal = newTokenModal()
	}
	m.input.Blur()
	return textinput.Blink
}

func (m *Model) closeModal() tea.Cmd {
	m.modal = nil
	return m.input.Focus()
}

func (md *modal) setFocus(i int) tea.Cmd {
	n := len(md.fields)
	md.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range md.fields {
		if j == md.focus {
			cmd = md.fields[j].Focus()
		} else {
			md.fields[j].Blur()
		}
	}
	return cmd
}

func (md *modal) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	md.fields[md.focus], cmd = md.fields[md.focus].Update(msg)
	return cmd
}

func (md *modal) entry() favorites.Entry {
	return favorites.Entry{
		Name:        md.fields[0].Value(),
		URL:         md.fields[1].Value(),
		Description: md.fields[2].Value(),
	}
}

func (md *modal) view(spin string) string {
	var b strings.Builder
	switch md.kind {
	case tokenModal:
		b.WriteString(modalTitleStyle.Render("Store a GitHub token"))
	case addModal:
		b.WriteString(modalTitleStyle.Render("Add a favorite"))
	}
	b.WriteString("\n\n")
	for i, f := range md.fields {
		b.WriteString(labelStyle.Render(md.labels[i]))
		b.WriteString("\n")
		b.WriteString(f.View())
		b.WriteString("\n\n")
	}
	if md.err != nil {
		b.WriteString(errorStyle.Render(md.err.Error()))
		b.WriteString("\n\n")
	}
	switch {
	case md.submitting:
		b.WriteString(spin + " Saving...")
	case md.kind == tokenModal:
		b.WriteString(placeholderStyle.Render("enter save · ctrl+x clear token · esc cancel"))
	default:
		b.WriteString(placeholderStyle.Render("tab next field · enter save · esc cancel"))
	}
	return modalStyle.Render(lipgloss.NewStyle().Width(44).Render(b.String()))
}

func (m *Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	md := m.modal
	switch msg.Type {
	case tea.KeyEsc:
		// Closing does not abort a running add; its result still arrives.
		return m, m.closeModal()
	case tea.KeyTab, tea.KeyDown:
		return m, md.setFocus(md.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, md.setFocus(md.focus - 1)
	case tea.KeyCtrlX:
		if md.kind != tokenModal {
			break
		}
		err := m.options.Backend.ClearToken()
		m.refreshToken()
		if err != nil {
			md.err = err
			return m, nil
		}
		md.fields[0].Reset()
		md.err = nil
		m.setNotice("Token cleared.")
		return m, nil
	case tea.KeyEnter, tea.KeyCtrlS:
		return m.submitModal()
	}
	return m, md.updateFocused(msg)
}

func (m *Model) submitModal() (tea.Model, tea.Cmd) {
	md := m.modal
	if md.submitting {
		return m, nil
	}

	switch md.kind {
	case tokenModal:
		err := m.options.Backend.SetToken(md.fields[0].Value())
		m.refreshToken()
		if err != nil {
			md.err = err
			return m, nil
		}
		m.setNotice("Token saved.")
		m.modal = newAddModal()
		return m, textinput.Blink

	case addModal:
		entry := md.entry()
		md.submitting = true
		md.err = nil
		b := m.options.Backend
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			err := b.Add(context.Background(), entry)
			return AddedMsg{Entry: entry.Normalize(), Err: err}
		})
	}
	return m, nil
}

func (m *Model) handleAdded(msg AddedMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		m.modal.submitting = false
	}

	if msg.Err != nil {
		switch {
		case m.modal == nil || m.modal.kind != addModal:
			m.setError(fmt.Sprintf("Adding %q failed: %v", msg.Entry.Name, msg.Err))
		case errors.Is(msg.Err, gist.ErrMissingToken):
			m.refreshToken()
			m.modal = newTokenModal()
			m.modal.err = msg.Err
		default:
			m.modal.err = msg.Err
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.modal != nil && m.modal.kind == addModal {
		cmd = m.closeModal()
	}
	// Add reloaded the collection itself, superseding any reload in flight.
	m.loading = false
	m.loaded = true
	m.loadErr = nil
	m.setNotice(fmt.Sprintf("Added %q.", msg.Entry.Name))
	m.applyFilter()
	return m, cmd
}
