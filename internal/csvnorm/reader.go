// Package csvnorm turns loosely-structured CSV exports from email marketing
// platforms into typed records. Column naming, date formats, and numeric
// formatting all drift between export versions, so every lookup here is
// alias-driven and every coercion is tolerant: malformed cells degrade to
// zero/nil values and a diagnostic, never an error.
package csvnorm

import "strings"

// Table is the raw parse result: an ordered header row plus one field-keyed
// map per data row. Duplicate headers keep the first occurrence.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool { return t == nil || len(t.Rows) == 0 }

// Parse splits raw CSV text into a Table. Lines may end in \n or \r\n; blank
// lines are dropped; the first non-blank line is the header row. Fields are
// split on commas with basic double-quote handling (quoted commas survive,
// doubled quotes unescape). Missing trailing fields come back as "".
//
// Empty or missing input yields an empty Table, not an error.
func Parse(text string) *Table {
	t := &Table{}
	if strings.TrimSpace(text) == "" {
		return t
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return t
	}

	for _, h := range splitFields(lines[0]) {
		t.Headers = append(t.Headers, strings.TrimSpace(h))
	}

	for _, line := range lines[1:] {
		fields := splitFields(line)
		row := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if h == "" {
				continue
			}
			if _, seen := row[h]; seen {
				continue
			}
			if i < len(fields) {
				row[h] = strings.TrimSpace(fields[i])
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}

// splitFields splits one CSV line on commas. Double quotes group fields so
// that embedded commas survive; anything beyond that (embedded newlines,
// stray quotes) is passed through as-is. The upstream exports make no
// stronger guarantee, so neither do we.
func splitFields(line string) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				b.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	fields = append(fields, b.String())
	return fields
}
