package csvio

import "strings"

// QuoteMode selects how the tokenizer treats double-quote characters.
// The dashboard's CSV sources are not uniform: the alert and news feeds
// were written with bare quote toggling, while the weather and fuel feeds
// use RFC-style doubled-quote escapes inside quoted fields. Both behaviors
// are valid target configurations of the same scanner.
type QuoteMode int

const (
	// QuoteSimple toggles an in-quotes flag on every quote character and
	// never emits the quote itself. Doubled quotes are not unescaped.
	QuoteSimple QuoteMode = iota

	// QuoteEscaped decodes a doubled quote inside a quoted field to a
	// literal quote character; single quotes still toggle the field state.
	QuoteEscaped
)

// SplitLine splits one logical CSV line into its ordered raw field values.
// It is a single left-to-right scan and never fails: a line with unbalanced
// quotes degrades to a best-effort split with the open-quote state simply
// persisting to the end of the line.
func SplitLine(line string, mode QuoteMode) []string {
	var fields []string
	var acc strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if mode == QuoteEscaped && inQuotes && i+1 < len(line) && line[i+1] == '"' {
				acc.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(acc.String()))
			acc.Reset()
		default:
			acc.WriteByte(c)
		}
	}

	fields = append(fields, strings.TrimSpace(acc.String()))
	return fields
}

// StripQuotes removes exactly one layer of surrounding double quotes.
// Values are already unquoted by the tokenizer, so this only fires on
// quoting the scanner did not consume (e.g. quotes nested one level deep
// in upstream exports). Applying it twice is a no-op on clean input.
func StripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
