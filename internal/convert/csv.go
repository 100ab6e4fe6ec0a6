package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// CSVConverter renders a CSV file as a table. The first row is the header.
type CSVConverter struct{}

func (c *CSVConverter) Convert(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv %s: %w", filename, err)
	}
	if len(records) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("<table>\n<thead>")
	writeRow(&sb, "th", records[0])
	sb.WriteString("</thead>\n")
	if len(records) > 1 {
		sb.WriteString("<tbody>\n")
		for _, row := range records[1:] {
			writeRow(&sb, "td", row)
			sb.WriteString("\n")
		}
		sb.WriteString("</tbody>\n")
	}
	sb.WriteString("</table>")
	return sb.String(), nil
}

func writeRow(sb *strings.Builder, cell string, row []string) {
	sb.WriteString("<tr>")
	for _, v := range row {
		fmt.Fprintf(sb, "<%s>%s</%s>", cell, html.EscapeString(v), cell)
	}
	sb.WriteString("</tr>")
}
