package cli

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// kubectlStyle renders tables the way kubectl does: no box-drawing
// characters, columns separated by whitespace rather than "|", safe for
// copy/paste and piping to grep/awk/cut.
var kubectlStyle = table.Style{
	Name: "kubectl",
	Box: table.BoxStyle{
		PaddingLeft:  "",
		PaddingRight: "   ",
	},
	Format: table.FormatOptions{
		Header: text.FormatUpper,
		Row:    text.FormatDefault,
	},
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateHeader:  false,
		SeparateRows:    false,
	},
}

// PlainTableWriter renders kubectl-style plain tables on top of
// go-pretty's table.Writer, deferring column-width and padding
// bookkeeping to that library instead of reimplementing it.
type PlainTableWriter struct {
	headers     []string
	rows        [][]string
	showHeaders bool
	output      io.Writer
}

// NewPlainTableWriter creates a new plain table writer with kubectl-style
// formatting. By default, headers are shown; use SetNoHeaders(true) to
// suppress them.
func NewPlainTableWriter(output io.Writer) *PlainTableWriter {
	return &PlainTableWriter{
		showHeaders: true,
		output:      output,
	}
}

// SetHeaders sets the column headers for the table. Headers are displayed
// in uppercase.
func (w *PlainTableWriter) SetHeaders(headers []string) {
	w.headers = make([]string, len(headers))
	for i, h := range headers {
		w.headers[i] = strings.ToUpper(h)
	}
}

// SetNoHeaders controls whether to suppress the header row.
func (w *PlainTableWriter) SetNoHeaders(noHeaders bool) {
	w.showHeaders = !noHeaders
}

// AppendRow adds a row to the table, padding short rows with empty cells
// and dropping cells beyond the header count.
func (w *PlainTableWriter) AppendRow(row []string) {
	normalized := make([]string, len(w.headers))
	for i := range w.headers {
		if i < len(row) {
			normalized[i] = row[i]
		}
	}
	w.rows = append(w.rows, normalized)
}

// Render writes the table to the configured output. Nothing is written if
// no headers were set, or if there are no rows and headers are suppressed.
func (w *PlainTableWriter) Render() {
	if len(w.headers) == 0 {
		return
	}
	if len(w.rows) == 0 && !w.showHeaders {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w.output)
	t.SetStyle(kubectlStyle)

	if w.showHeaders {
		t.AppendHeader(stringsToRow(w.headers))
	}
	for _, row := range w.rows {
		t.AppendRow(stringsToRow(row))
	}
	t.Render()
}

func stringsToRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
