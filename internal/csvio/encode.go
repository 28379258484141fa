package csvio

import "strings"

// EncodeField quotes a value for CSV output only when it needs it: fields
// containing a comma, quote, or newline get wrapped in quotes with interior
// quotes doubled. Encoded output re-parses field-for-field under the
// QuoteEscaped tokenizer; the simple variant keeps the field shape but
// drops the interior quote characters.
func EncodeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// EncodeLine renders one row of field values as a CSV line (no newline).
func EncodeLine(fields []string) string {
	encoded := make([]string, len(fields))
	for i, f := range fields {
		encoded[i] = EncodeField(f)
	}
	return strings.Join(encoded, ",")
}

// Encode renders a full CSV document: header row, then one line per row,
// with a trailing newline.
func Encode(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(EncodeLine(headers))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(EncodeLine(row))
		b.WriteByte('\n')
	}
	return b.String()
}
