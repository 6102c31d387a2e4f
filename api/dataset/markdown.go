package dataset

import (
	"strings"
)

var cellEscaper = strings.NewReplacer(
	"|", `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
)

// Markdown renders the table as a GitHub flavored markdown table.
// Short rows are padded; at most limit rows are written when limit > 0.
func (t *Table) Markdown(limit int) string {
	width := t.Width()
	if width == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for j := 0; j < width; j++ {
			var v string
			if j < len(cells) {
				v = cellEscaper.Replace(strings.TrimSpace(cells[j]))
			}
			b.WriteString(" ")
			b.WriteString(v)
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(t.Header)
	b.WriteString("|")
	b.WriteString(strings.Repeat(" --- |", width))
	b.WriteString("\n")

	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
