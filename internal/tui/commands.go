package tui

import "strings"

// Command represents a parsed slash command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a slash command from input.
// Returns nil if the input is not a slash command.
func ParseCommand(input string) *Command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	input = input[1:] // strip leading /
	parts := strings.SplitN(input, " ", 2)
	cmd := &Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// HelpText returns the help message as markdown.
func HelpText() string {
	return "# gistfav\n\n" +
		"Type to filter the list. Press **enter** on a favorite for details.\n\n" +
		"## Keys\n\n" +
		"| Key | Action |\n" +
		"|---|---|\n" +
		"| `tab` | Toggle exact / fuzzy search |\n" +
		"| `up` / `down` | Move the selection |\n" +
		"| `ctrl+r` | Reload from the gist |\n" +
		"| `ctrl+n` | Add a favorite |\n" +
		"| `esc` | Close details or clear the search |\n" +
		"| `ctrl+c` | Quit |\n\n" +
		"## Commands\n\n" +
		"| Command | Action |\n" +
		"|---|---|\n" +
		"| `/help` | Show this help message |\n" +
		"| `/quit`, `/exit` | Exit gistfav |\n" +
		"| `/reload` | Reload from the gist |\n" +
		"| `/mode [exact\\|fuzzy]` | Show or change the search mode |\n" +
		"| `/add` | Add a favorite |\n" +
		"| `/token [<value>]` | Store a GitHub token |\n" +
		"| `/logout` | Forget the stored token |\n" +
		"| `/update` | Update gistfav to the latest release |\n"
}
