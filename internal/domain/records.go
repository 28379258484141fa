package domain

import "strings"

// AlertRecord is one row of alerts.csv. The alert feed is consumed as
// plain strings with no coercion; is_active stays the literal "TRUE" /
// "FALSE" text (case-insensitive) the writer produced.
type AlertRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Location    string `json:"location"`
	Severity    string `json:"severity"`
	Source      string `json:"source"`
	SourceID    string `json:"source_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	CreatedAt   string `json:"created_at"`
	IsActive    string `json:"is_active"`
}

// Active reports whether the is_active cell reads TRUE, in any casing.
func (a AlertRecord) Active() bool {
	return strings.EqualFold(strings.TrimSpace(a.IsActive), "TRUE")
}

// NewsRecord is one row of news.csv after header aliasing and category
// normalization. Columns with no known alias pass through verbatim in
// Extra under their lowercased header name.
type NewsRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	FullText    string   `json:"full_text,omitempty"`
	Link        string   `json:"link,omitempty"`
	Source      string   `json:"source"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Location    string   `json:"location"`
	Impact      string   `json:"impact"`
	Severity    string   `json:"severity"`
	Keywords    []string `json:"keywords"`
	Date        string   `json:"date"`
	ProcessedAt string   `json:"processed_at,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// ForecastEntry is one element of the forecast JSON array embedded in a
// weather CSV cell.
type ForecastEntry struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Rain        float64 `json:"rain"`
}

// WeatherAlert is one element of the alerts JSON array embedded in a
// weather CSV cell.
type WeatherAlert struct {
	Event       string `json:"event"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// WeatherRecord is one row of weather.csv. Numeric cells coerce to 0 on
// failure; the forecast and alerts cells hold nested JSON arrays that
// decode to empty lists on failure.
type WeatherRecord struct {
	ID          string          `json:"id"`
	Location    string          `json:"location"`
	Temperature float64         `json:"temperature"`
	FeelsLike   float64         `json:"feels_like"`
	Humidity    float64         `json:"humidity"`
	Weather     string          `json:"weather"`
	Description string          `json:"description"`
	WindSpeed   float64         `json:"wind_speed"`
	Rain        float64         `json:"rain"`
	Alerts      []WeatherAlert  `json:"alerts"`
	Forecast    []ForecastEntry `json:"forecast"`
	Timestamp   string          `json:"timestamp"`
}

// FuelRecord is one row of fuel_prices.csv: a dated snapshot of Ceypetco
// pump and industrial prices in rupees. Every price coerces to 0 when the
// source cell is blank or unparseable.
type FuelRecord struct {
	ID                 string  `json:"id"`
	Date               string  `json:"date"`
	DateStr            string  `json:"date_str"`
	Petrol95           float64 `json:"petrol_95"`
	Petrol92           float64 `json:"petrol_92"`
	AutoDiesel         float64 `json:"auto_diesel"`
	SuperDiesel        float64 `json:"super_diesel"`
	Kerosene           float64 `json:"kerosene"`
	IndustrialKerosene float64 `json:"industrial_kerosene"`
	Furnace800         float64 `json:"furnace_800"`
	Furnace1500High    float64 `json:"furnace_1500_high"`
	Furnace1500Low     float64 `json:"furnace_1500_low"`
	Location           string  `json:"location"`
	Source             string  `json:"source"`
	ScrapedAt          string  `json:"scraped_at,omitempty"`
	RecordedAt         string  `json:"recorded_at,omitempty"`
}

// Prices returns the nine price fields keyed by column name, in CSV
// column order. Used by trend analysis and the XLSX exporter.
func (f FuelRecord) Prices() []PriceField {
	return []PriceField{
		{"petrol_95", f.Petrol95},
		{"petrol_92", f.Petrol92},
		{"auto_diesel", f.AutoDiesel},
		{"super_diesel", f.SuperDiesel},
		{"kerosene", f.Kerosene},
		{"industrial_kerosene", f.IndustrialKerosene},
		{"furnace_800", f.Furnace800},
		{"furnace_1500_high", f.Furnace1500High},
		{"furnace_1500_low", f.Furnace1500Low},
	}
}

// PriceField pairs a fuel price column with its value.
type PriceField struct {
	Name  string
	Value float64
}
