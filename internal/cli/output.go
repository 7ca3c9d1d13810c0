package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/dxvk-studio/dxvk-studio/internal/deploy"
)

var (
	successColor = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}
	warningColor = lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFB74D"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
	accentColor  = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"}

	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(14)
	pathStyle    = lipgloss.NewStyle().Foreground(accentColor).Italic(true)
)

// isTerminal reports whether f is an interactive terminal with color
// allowed.
func isTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), value)
}

// printError renders a failed command on stderr with its failure kind.
func printError(w io.Writer, err error) {
	var failed *resultError
	if errors.As(err, &failed) {
		fmt.Fprintf(w, "%s %s %s\n", errorStyle.Render("Error:"), failed.msg, mutedStyle.Render("("+string(failed.kind)+")"))
		return
	}
	fmt.Fprintf(w, "%s %v\n", errorStyle.Render("Error:"), err)
}

// resultError turns an unsuccessful structured result into a non-zero exit.
type resultError struct {
	kind deploy.Kind
	msg  string
}

func (e *resultError) Error() string { return fmt.Sprintf("%s: %s", e.kind, e.msg) }

func failure(kind deploy.Kind, msg string) error {
	return &resultError{kind: kind, msg: msg}
}
