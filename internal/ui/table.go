package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

// TableBuilder collects rows and renders a formatted table.
type TableBuilder struct {
	headers []string
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row to the table.
func (builder *TableBuilder) AddRow(row []string) {
	builder.rows = append(builder.rows, row)
}

// String renders the table output.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.headers, builder.rows)
}

// FormatTable renders headers and rows as left-aligned columns separated by
// two spaces. Styled cells are measured by their visible width.
func FormatTable(headers []string, rows [][]string) string {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, normalizeRow(headers))
	for _, row := range rows {
		all = append(all, normalizeRow(row))
	}

	widths := make([]int, len(headers))
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var builder strings.Builder
	for _, row := range all {
		for i, cell := range row {
			builder.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			padding := 2
			if i < len(widths) {
				padding += widths[i] - lipgloss.Width(cell)
			}
			builder.WriteString(strings.Repeat(" ", padding))
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

// TruncateTableCell limits cell width, keeping any styling intact.
func TruncateTableCell(value string) string {
	value = normalizeTableCell(value)
	if lipgloss.Width(value) <= tableCellMaxWidth {
		return value
	}
	return truncate.StringWithTail(value, tableCellMaxWidth, tableCellEllipsis)
}

func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = normalizeTableCell(cell)
	}
	return out
}

func normalizeTableCell(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}
