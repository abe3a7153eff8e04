package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/devtoy/cli/internal/export"
)

var (
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleFail  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleDim   = lipgloss.NewStyle().Faint(true)
	styleTitle = lipgloss.NewStyle().Bold(true)
)

// configureColor turns off all styling when disable is set
func configureColor(disable bool) {
	if disable {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled reports whether styled output should be written to stdout
func colorEnabled() bool {
	return !noColor && os.Getenv("NO_COLOR") == "" && isTerminal(os.Stdout)
}

// formatResult renders one export outcome as a single line
func formatResult(res export.Result) string {
	if res.Err != nil {
		return fmt.Sprintf("%s %s %s", styleFail.Render("✗"), res.Slug, styleDim.Render(res.Err.Error()))
	}
	return fmt.Sprintf("%s %s", styleOK.Render("✓"), res.Path)
}

func printResult(w io.Writer, res export.Result) {
	fmt.Fprintln(w, formatResult(res))
}
