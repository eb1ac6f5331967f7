package tui

import (
	"fmt"

	"github.com/gistfav/gistfav/internal/search"
)

// StatusBar renders the top status bar.
func StatusBar(shown, total int, mode search.Mode, hasToken bool, version string, width int) string {
	tok := "read-only"
	if hasToken {
		tok = "token set"
	}
	if version == "" {
		version = "dev"
	}
	text := fmt.Sprintf("  gistfav %s - %d/%d favorites - %s - %s  ", version, shown, total, mode, tok)
	return statusBarStyle.Width(width).Render(text)
}
