package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/wliublackruvy/agent-based-dev/internal/domain"
)

// Column is one table column. A zero Width sizes the column to its content.
type Column struct {
	Name  string
	Width int
}

// Table renders aligned columns. Widths are measured in terminal cells so
// wide runes line up.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []Column
	rows    [][]string
}

// NewTable creates a Table.
func NewTable(w io.Writer, columns ...Column) *Table {
	return &Table{w: w, styles: NewTableStyles(), columns: columns}
}

// Row buffers a row. Extra values are ignored; missing ones are blank.
func (t *Table) Row(values ...string) {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Render writes the header and every buffered row.
func (t *Table) Render() {
	widths := t.widths()

	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(t.line(names, widths)))
	for _, row := range t.rows {
		_, _ = fmt.Fprintln(t.w, t.line(row, widths))
	}
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		if c.Width > 0 {
			widths[i] = c.Width
			continue
		}
		widths[i] = runewidth.StringWidth(c.Name)
		for _, row := range t.rows {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	return widths
}

func (t *Table) line(values []string, widths []int) string {
	cells := make([]string, len(values))
	for i, v := range values {
		v = runewidth.Truncate(v, widths[i], "…")
		if i == len(values)-1 {
			cells[i] = v
			continue
		}
		cells[i] = runewidth.FillRight(v, widths[i])
	}
	return strings.Join(cells, "  ")
}

// RenderItems writes work items as a status table.
func RenderItems(w io.Writer, items []*domain.WorkItem) {
	t := NewTable(w,
		Column{Name: "ID"},
		Column{Name: "STATUS", Width: 10},
		Column{Name: "CATEGORY"},
		Column{Name: "TITLE", Width: 48},
		Column{Name: "FEEDBACK", Width: 40},
	)
	for _, it := range items {
		t.Row(it.ID, StatusIcon(it.Status)+" "+StatusLabel(it.Status), it.Category, it.Title, firstLine(it.Feedback))
	}
	t.Render()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
