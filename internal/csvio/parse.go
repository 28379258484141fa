// Package csvio implements the shared CSV parsing and normalization engine
// behind every dashboard data source.
//
// The upstream CSV files are not schema-guaranteed: columns appear under
// varying headers, numeric cells may be blank or garbage, and two columns
// of the weather feed embed whole JSON arrays inside a single cell. The
// engine therefore follows a silent-fallback policy throughout: tokenizing,
// numeric coercion, and nested-JSON decoding are total functions that
// degrade to '', 0, or an empty list instead of failing, and malformed
// quoting produces a best-effort split rather than an error. Failures that
// lose data (an undecodable JSON cell) are reported to the log only.
package csvio

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Parse tokenizes CSV text (one header row plus data rows) into records
// according to the schema. It never fails:
//
//   - an empty body, a header-only body, or the file server's literal
//     "empty" fallback payload all yield zero rows;
//   - blank lines are skipped;
//   - a short row pads missing trailing fields with "";
//   - a long row drops its extra values.
//
// The returned row count always equals the number of non-empty data lines.
func Parse(text string, schema Schema) []Row {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	headers := parseHeader(lines[0], schema)
	if len(headers) == 0 {
		return nil
	}

	numeric := fieldSet(schema.Numeric)
	jsonLists := fieldSet(schema.JSONLists)

	var rows []Row
	for _, line := range lines[1:] {
		values := SplitLine(line, schema.Quotes)
		if len(values) > len(headers) && schema.Observer != nil {
			schema.Observer.RowTruncated(schema.Name)
		}

		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(values) {
				m[h] = StripQuotes(values[i])
			} else {
				m[h] = ""
			}
		}
		rows = append(rows, Row{
			Headers:   headers,
			Values:    m,
			numeric:   numeric,
			jsonLists: jsonLists,
			feed:      schema.Name,
			observer:  schema.Observer,
		})
	}
	return rows
}

// parseHeader tokenizes the header line and resolves each token to its
// canonical field name. Alias resolution runs once here, not per row.
func parseHeader(line string, schema Schema) []string {
	tokens := SplitLine(line, schema.Quotes)

	headers := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		h := strings.TrimSpace(StripQuotes(tok))
		if canonical, ok := schema.Aliases[strings.ToLower(h)]; ok {
			h = canonical
		} else if schema.LowercaseHeaders {
			h = strings.ToLower(h)
		}
		headers = append(headers, h)
	}
	return headers
}

// splitLines breaks the body into non-empty logical lines. Trailing blank
// lines and stray \r from CRLF sources are dropped.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// Float parses a string as a float64. Any failure (empty, non-numeric,
// NaN, infinity) yields 0 — never an error, never NaN surfaced upward.
func Float(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// DecodeJSONList decodes a cell holding an embedded JSON array into dst,
// which must be a pointer to a slice. Doubled quotes left over from CSV
// quoting are unescaped first. A cell that does not start with '[' or that
// fails to decode leaves dst untouched and returns false; the caller keeps
// its empty-list default. Decode failures are logged, never returned.
func DecodeJSONList(cell string, dst any, logger *slog.Logger) bool {
	s := strings.TrimSpace(cell)
	if strings.Contains(s, `""`) {
		s = strings.ReplaceAll(s, `""`, `"`)
	}
	if !strings.HasPrefix(s, "[") {
		return false
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		if logger != nil {
			logger.Debug("undecodable JSON cell", "error", err, "cell_prefix", prefix(s, 40))
		}
		return false
	}
	return true
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
