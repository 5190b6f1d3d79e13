package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

var (
	colorHeader = lipgloss.Color("245")
	colorOnline = lipgloss.Color("#50fa7b")
	colorFailed = lipgloss.Color("#ff5555")
	colorBorder = lipgloss.Color("#6272a4")
)

// isTerminalWriter reports whether w is an interactive terminal.
var isTerminalWriter = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable writes rows as a table. Piped output gets no visible border so
// it stays easy to grep and cut. highlight picks a color per cell; it may be
// nil.
func renderTable(w io.Writer, headers []string, rows [][]string, highlight func(row, col int) lipgloss.TerminalColor) {
	tty := isTerminalWriter(w)

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(colorHeader)
			}
			if tty && highlight != nil {
				if c := highlight(row, col); c != nil {
					style = style.Foreground(c)
				}
			}
			return style
		})

	if tty {
		t = t.Border(lipgloss.RoundedBorder()).BorderStyle(lipgloss.NewStyle().Foreground(colorBorder))
	} else {
		t = t.Border(lipgloss.HiddenBorder())
	}

	fmt.Fprintln(w, t.Render())
}
