package csvio

import (
	"log/slog"
	"strings"
)

// Observer receives parser fallback events: rows whose extra values were
// dropped and JSON cells that failed to decode. Implementations feed
// metrics; a nil observer discards the events.
type Observer interface {
	RowTruncated(feed string)
	JSONCellFallback(feed string)
}

// Schema configures parsing for one CSV domain. It enumerates everything
// that varies between the dashboard's data sources: header casing, header
// aliases, quote handling, and which canonical fields carry numeric or
// nested-JSON payloads.
type Schema struct {
	// Name identifies the domain in logs and metrics ("news", "weather", ...).
	Name string

	// LowercaseHeaders folds header tokens to lower case before alias
	// lookup and passthrough. The news feed does this; the other feeds
	// keep header case as written.
	LowercaseHeaders bool

	// Aliases maps a lowercased, trimmed header token to its canonical
	// field name. Headers without an alias pass through verbatim.
	Aliases map[string]string

	// Numeric lists canonical fields coerced with Float (failure -> 0).
	Numeric []string

	// JSONLists lists canonical fields holding a JSON array in a single
	// cell (failure -> empty list).
	JSONLists []string

	// Quotes selects the tokenizer variant for this domain.
	Quotes QuoteMode

	// Observer, when set, is notified of fallback events during parsing
	// and field decoding.
	Observer Observer
}

func fieldSet(fields []string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// Row is one parsed CSV record: canonical field names in column order plus
// the value for each. Every header has an entry; a field absent from a
// short row holds the empty string, never a missing key. Rows built by
// Parse carry their schema's field declarations, which drive Float and
// JSONList.
type Row struct {
	Headers []string
	Values  map[string]string

	numeric   map[string]bool
	jsonLists map[string]bool
	feed      string
	observer  Observer
}

// Get returns the raw value for a canonical field, or "" when the column
// was not present at all.
func (r Row) Get(field string) string {
	return r.Values[field]
}

// Float returns the field coerced to a float64, 0 on any failure. On a
// row built by Parse only fields the schema declares Numeric coerce;
// everything else reads as 0. A row built directly coerces any field.
func (r Row) Float(field string) float64 {
	if r.numeric != nil && !r.numeric[field] {
		return 0
	}
	return Float(r.Values[field])
}

// JSONList decodes a schema-declared JSON-array cell into dst, which must
// be a pointer to a slice. On any failure dst is left untouched, so the
// caller keeps its empty-list default; a non-blank cell that fails is
// reported to the schema's observer.
func (r Row) JSONList(field string, dst any, logger *slog.Logger) bool {
	if r.jsonLists != nil && !r.jsonLists[field] {
		return false
	}
	cell := r.Values[field]
	if DecodeJSONList(cell, dst, logger) {
		return true
	}
	if strings.TrimSpace(cell) != "" && r.observer != nil {
		r.observer.JSONCellFallback(r.feed)
	}
	return false
}
