package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var checkStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))

// ConsoleNotifier prints user-facing sync summaries to stdout.
type ConsoleNotifier struct {
	// Plain suppresses the styled prefix (non-TTY output).
	Plain bool
}

// NewConsoleNotifier creates a notifier, styling only when stdout is a
// terminal.
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{
		Plain: !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

// Notify prints a one-line summary.
func (n *ConsoleNotifier) Notify(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if n.Plain {
		fmt.Println(msg)
		return
	}
	fmt.Printf("%s %s\n", checkStyle.Render("✓"), msg)
}
