package command

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"

	notefavicon "github.com/dgduncan/go-note-favicon"
)

// TableWriter renders rows under headers as a borderless table.
func TableWriter(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	var (
		headerStyle = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle   = lipgloss.NewStyle().Align(lipgloss.Left)
	)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}
			if col > 0 {
				style = style.PaddingLeft(1)
			}
			return style
		}).
		Headers(headers...).
		Rows(rows...).
		BorderHeader(false)

	fmt.Fprintln(w, t)
}

// imageSize returns the humanized decoded size of a data URI image, or "-".
func imageSize(image string) string {
	if image == "" {
		return "-"
	}
	data, _, err := notefavicon.DecodeDataURI(image)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(len(data)))
}
