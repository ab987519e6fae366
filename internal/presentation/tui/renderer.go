package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/solver"
)

// NewRenderer returns a function that renders markdown using glamour with
// a style matched to the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Markdown formats a finished calculation: the function and derivative,
// the iteration table and the terminal message.
func Markdown(resp *gonewton.Response) string {
	return Table(resp) + "**" + resp.Result.Status.String() + "**: " + escape(resp.Result.Message) + "\n"
}

// Table is Markdown without the terminal message.
func Table(resp *gonewton.Response) string {
	var b strings.Builder
	if resp.Function != "" {
		b.WriteString("## f(x) = `" + resp.Function + "`\n\n")
		b.WriteString("f'(x) = `" + resp.Derivative + "`\n\n")
	}
	if len(resp.Trace) > 0 {
		b.WriteString(row(solver.Headers))
		sep := make([]string, len(solver.Headers))
		for i := range sep {
			sep[i] = "---:"
		}
		b.WriteString(row(sep))
		for _, r := range resp.Trace {
			b.WriteString(row(r.Cells()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func row(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |\n"
}

// escape keeps multi-line messages inside one markdown paragraph.
func escape(s string) string {
	return strings.ReplaceAll(s, "\n", "  \n")
}
