package domain

import (
	"log/slog"
	"strings"

	"github.com/harithj/lanka-sitrep/internal/csvio"
)

// CSV column orders, matching what the store writes. Reads tolerate any
// column order (and, for news, any aliased header) — these fix the order
// for writes and exports.
var (
	AlertColumns = []string{
		"id", "title", "description", "category", "subcategory",
		"location", "severity", "source", "source_id", "start_time",
		"end_time", "created_at", "is_active",
	}
	NewsColumns = []string{
		"id", "title", "summary", "full_text", "link", "source",
		"category", "subcategory", "location", "impact", "severity",
		"keywords", "date", "processed_at",
	}
	WeatherColumns = []string{
		"id", "location", "temperature", "feels_like", "humidity",
		"weather", "description", "wind_speed", "rain", "alerts",
		"forecast", "timestamp",
	}
	FuelColumns = []string{
		"id", "date", "date_str", "petrol_95", "petrol_92",
		"auto_diesel", "super_diesel", "kerosene", "industrial_kerosene",
		"furnace_800", "furnace_1500_high", "furnace_1500_low",
		"location", "source", "scraped_at", "recorded_at",
	}
)

// newsAliases maps the header spellings seen across upstream news exports
// to canonical field names.
var newsAliases = map[string]string{
	"headline":       "title",
	"description":    "summary",
	"content":        "summary",
	"region":         "location",
	"area":           "location",
	"importance":     "impact",
	"timestamp":      "date",
	"published_date": "date",
}

// AlertsSchema parses the alert feed: headers as written, simple quote
// toggling, no coercion.
func AlertsSchema() csvio.Schema {
	return csvio.Schema{
		Name:   "alerts",
		Quotes: csvio.QuoteSimple,
	}
}

// NewsSchema parses the news feed: lowercased headers, alias mapping,
// simple quote toggling.
func NewsSchema() csvio.Schema {
	return csvio.Schema{
		Name:             "news",
		LowercaseHeaders: true,
		Aliases:          newsAliases,
		JSONLists:        []string{"keywords"},
		Quotes:           csvio.QuoteSimple,
	}
}

// StoredAlertsSchema parses alert files the store wrote itself. The
// writer doubles interior quotes, so reading its output back takes the
// doubled-quote tokenizer; QuoteSimple stays the configuration for
// foreign alert exports.
func StoredAlertsSchema() csvio.Schema {
	s := AlertsSchema()
	s.Quotes = csvio.QuoteEscaped
	return s
}

// StoredNewsSchema parses news files the store wrote itself: same
// aliases as NewsSchema, doubled-quote unescaping so quoted titles and
// the keywords cell survive a write-read round trip.
func StoredNewsSchema() csvio.Schema {
	s := NewsSchema()
	s.Quotes = csvio.QuoteEscaped
	return s
}

// WeatherSchema parses the weather feed: headers as written, doubled-quote
// unescaping, numeric coercion, and two nested-JSON cells.
func WeatherSchema() csvio.Schema {
	return csvio.Schema{
		Name:      "weather",
		Numeric:   []string{"temperature", "feels_like", "humidity", "wind_speed", "rain"},
		JSONLists: []string{"alerts", "forecast"},
		Quotes:    csvio.QuoteEscaped,
	}
}

// FuelSchema parses the fuel price feed: headers as written, doubled-quote
// unescaping, nine numeric price columns.
func FuelSchema() csvio.Schema {
	return csvio.Schema{
		Name: "fuel",
		Numeric: []string{
			"petrol_95", "petrol_92", "auto_diesel", "super_diesel",
			"kerosene", "industrial_kerosene", "furnace_800",
			"furnace_1500_high", "furnace_1500_low",
		},
		Quotes: csvio.QuoteEscaped,
	}
}

// AlertFromRow builds an AlertRecord. All fields are plain strings.
func AlertFromRow(r csvio.Row) AlertRecord {
	return AlertRecord{
		ID:          r.Get("id"),
		Title:       r.Get("title"),
		Description: r.Get("description"),
		Category:    r.Get("category"),
		Subcategory: r.Get("subcategory"),
		Location:    r.Get("location"),
		Severity:    r.Get("severity"),
		Source:      r.Get("source"),
		SourceID:    r.Get("source_id"),
		StartTime:   r.Get("start_time"),
		EndTime:     r.Get("end_time"),
		CreatedAt:   r.Get("created_at"),
		IsActive:    r.Get("is_active"),
	}
}

// newsKnownFields are the canonical news fields; anything else in a row is
// a passthrough column.
var newsKnownFields = map[string]bool{
	"id": true, "title": true, "summary": true, "full_text": true,
	"link": true, "source": true, "category": true, "subcategory": true,
	"location": true, "impact": true, "severity": true, "keywords": true,
	"date": true, "processed_at": true,
}

// NewsFromRow builds a NewsRecord: canonical fields, normalized category,
// decoded keywords, and verbatim passthrough of unrecognized columns.
func NewsFromRow(r csvio.Row, logger *slog.Logger) NewsRecord {
	rec := NewsRecord{
		ID:          r.Get("id"),
		Title:       r.Get("title"),
		Summary:     r.Get("summary"),
		FullText:    r.Get("full_text"),
		Link:        r.Get("link"),
		Source:      r.Get("source"),
		Category:    NormalizeCategory(r),
		Subcategory: r.Get("subcategory"),
		Location:    r.Get("location"),
		Impact:      r.Get("impact"),
		Severity:    r.Get("severity"),
		Keywords:    []string{},
		Date:        r.Get("date"),
		ProcessedAt: r.Get("processed_at"),
	}
	r.JSONList("keywords", &rec.Keywords, logger)

	for _, h := range r.Headers {
		if newsKnownFields[h] {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = map[string]string{}
		}
		rec.Extra[h] = r.Values[h]
	}
	return rec
}

// WeatherFromRow builds a WeatherRecord with float coercion on the five
// numeric fields and nested-JSON decoding of the forecast and alerts cells.
func WeatherFromRow(r csvio.Row, logger *slog.Logger) WeatherRecord {
	rec := WeatherRecord{
		ID:          r.Get("id"),
		Location:    r.Get("location"),
		Temperature: r.Float("temperature"),
		FeelsLike:   r.Float("feels_like"),
		Humidity:    r.Float("humidity"),
		Weather:     r.Get("weather"),
		Description: r.Get("description"),
		WindSpeed:   r.Float("wind_speed"),
		Rain:        r.Float("rain"),
		Alerts:      []WeatherAlert{},
		Forecast:    []ForecastEntry{},
		Timestamp:   r.Get("timestamp"),
	}
	r.JSONList("alerts", &rec.Alerts, logger)
	r.JSONList("forecast", &rec.Forecast, logger)
	return rec
}

// FuelFromRow builds a FuelRecord. date_str falls back to the date column
// when the display string is absent.
func FuelFromRow(r csvio.Row) FuelRecord {
	rec := FuelRecord{
		ID:                 r.Get("id"),
		Date:               r.Get("date"),
		DateStr:            r.Get("date_str"),
		Petrol95:           r.Float("petrol_95"),
		Petrol92:           r.Float("petrol_92"),
		AutoDiesel:         r.Float("auto_diesel"),
		SuperDiesel:        r.Float("super_diesel"),
		Kerosene:           r.Float("kerosene"),
		IndustrialKerosene: r.Float("industrial_kerosene"),
		Furnace800:         r.Float("furnace_800"),
		Furnace1500High:    r.Float("furnace_1500_high"),
		Furnace1500Low:     r.Float("furnace_1500_low"),
		Location:           r.Get("location"),
		Source:             r.Get("source"),
		ScrapedAt:          r.Get("scraped_at"),
		RecordedAt:         r.Get("recorded_at"),
	}
	if strings.TrimSpace(rec.DateStr) == "" {
		rec.DateStr = rec.Date
	}
	return rec
}

// ParseAlerts parses a whole alerts CSV body into records.
func ParseAlerts(text string) []AlertRecord {
	rows := csvio.Parse(text, AlertsSchema())
	out := make([]AlertRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, AlertFromRow(r))
	}
	return out
}

// ParseNews parses a whole news CSV body into records.
func ParseNews(text string, logger *slog.Logger) []NewsRecord {
	rows := csvio.Parse(text, NewsSchema())
	out := make([]NewsRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewsFromRow(r, logger))
	}
	return out
}

// ParseStoredAlerts parses an alerts CSV the store itself wrote.
func ParseStoredAlerts(text string) []AlertRecord {
	rows := csvio.Parse(text, StoredAlertsSchema())
	out := make([]AlertRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, AlertFromRow(r))
	}
	return out
}

// ParseStoredNews parses a news CSV the store itself wrote.
func ParseStoredNews(text string, logger *slog.Logger) []NewsRecord {
	rows := csvio.Parse(text, StoredNewsSchema())
	out := make([]NewsRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewsFromRow(r, logger))
	}
	return out
}

// ParseWeather parses a whole weather CSV body into records.
func ParseWeather(text string, logger *slog.Logger) []WeatherRecord {
	rows := csvio.Parse(text, WeatherSchema())
	out := make([]WeatherRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, WeatherFromRow(r, logger))
	}
	return out
}

// ParseFuel parses a whole fuel price CSV body into records.
func ParseFuel(text string) []FuelRecord {
	rows := csvio.Parse(text, FuelSchema())
	out := make([]FuelRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, FuelFromRow(r))
	}
	return out
}
