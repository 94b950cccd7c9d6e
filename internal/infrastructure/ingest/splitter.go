package ingest

import "strings"

// SplitFields splits one delimited line into fields. Commas inside
// double-quoted sections are literal, and a doubled quote inside a quoted
// section produces a single quote character. Surrounding quotes are
// stripped from the returned fields.
//
// Upstream exports routinely emit lines the strict RFC reader rejects
// (bare quotes in unquoted fields, trailing characters after a closing
// quote), so the splitter is deliberately permissive: anything that is
// not a delimiter or quote state change is passed through as-is.
func SplitFields(line string) []string {
	fields := make([]string, 0, 8)
	var b strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
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
