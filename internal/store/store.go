// Package store persists feed records as CSV files under a data
// directory, one file per feed. Files are created with their header row
// on startup; inserts append a single encoded line, reads parse the
// whole file through the feed's schema. All access goes through one
// mutex, so the store is safe for the scheduler and the API to share.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/harithj/lanka-sitrep/internal/csvio"
	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
)

// Feed file names inside the data directory.
const (
	AlertsFile  = "alerts.csv"
	NewsFile    = "news.csv"
	WeatherFile = "weather.csv"
	FuelFile    = "fuel_prices.csv"
)

// feedFiles maps feed name to file name and write column order.
var feedFiles = map[string]struct {
	file    string
	columns []string
}{
	"alerts":  {AlertsFile, domain.AlertColumns},
	"news":    {NewsFile, domain.NewsColumns},
	"weather": {WeatherFile, domain.WeatherColumns},
	"fuel":    {FuelFile, domain.FuelColumns},
}

// Store is the CSV-backed record store.
type Store struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
	schemas map[string]csvio.Schema

	mu     sync.Mutex
	lastID int64
}

// metricsObserver feeds parser fallback events into the store's metrics.
type metricsObserver struct {
	metrics *observability.Metrics
}

func (o metricsObserver) RowTruncated(feed string) {
	o.metrics.RowsDropped.WithLabelValues(feed).Inc()
}

func (o metricsObserver) JSONCellFallback(string) {
	o.metrics.JSONCellFallbacks.Inc()
}

// New creates the data directory if needed and initializes any missing
// feed file with its header row.
func New(dir string, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	// The store reads only files it wrote itself, so news and alerts
	// take the stored-variant schemas: the writer doubles interior
	// quotes, and only the doubled-quote tokenizer reads them back
	// unchanged.
	schemas := map[string]csvio.Schema{
		"alerts":  domain.StoredAlertsSchema(),
		"news":    domain.StoredNewsSchema(),
		"weather": domain.WeatherSchema(),
		"fuel":    domain.FuelSchema(),
	}
	obs := metricsObserver{metrics: metrics}
	for feed, sc := range schemas {
		sc.Observer = obs
		schemas[feed] = sc
	}

	s := &Store{dir: dir, logger: logger, metrics: metrics, schemas: schemas}
	for feed, f := range feedFiles {
		path := filepath.Join(dir, f.file)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		header := csvio.EncodeLine(f.columns) + "\n"
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", f.file, err)
		}
		logger.Info("initialized feed file", "feed", feed, "path", path)
	}
	return s, nil
}

// newID builds a millisecond-timestamp ID like "news_1756500000000".
// A monotonic guard keeps IDs unique when several records land in the
// same millisecond.
func (s *Store) newID(prefix string) string {
	ms := domain.Clock().Now().UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return fmt.Sprintf("%s_%d", prefix, ms)
}

func (s *Store) now() string {
	return domain.Clock().Now().UTC().Format(time.RFC3339)
}

func (s *Store) appendLine(feed string, fields []string) error {
	f := feedFiles[feed]
	path := filepath.Join(s.dir, f.file)
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.file, err)
	}
	defer fh.Close()

	if _, err := fh.WriteString(csvio.EncodeLine(fields) + "\n"); err != nil {
		return fmt.Errorf("failed to append to %s: %w", f.file, err)
	}
	s.metrics.StoreInserts.WithLabelValues(feed).Inc()
	return nil
}

func (s *Store) readFile(feed string) (string, error) {
	f := feedFiles[feed]
	data, err := os.ReadFile(filepath.Join(s.dir, f.file))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.file, err)
	}
	s.metrics.StoreReads.WithLabelValues(feed).Inc()
	return string(data), nil
}

func (s *Store) parseAlerts(text string) []domain.AlertRecord {
	rows := csvio.Parse(text, s.schemas["alerts"])
	out := make([]domain.AlertRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.AlertFromRow(r))
	}
	return out
}

func (s *Store) parseNews(text string) []domain.NewsRecord {
	rows := csvio.Parse(text, s.schemas["news"])
	out := make([]domain.NewsRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.NewsFromRow(r, s.logger))
	}
	return out
}

func (s *Store) parseWeather(text string) []domain.WeatherRecord {
	rows := csvio.Parse(text, s.schemas["weather"])
	out := make([]domain.WeatherRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.WeatherFromRow(r, s.logger))
	}
	return out
}

func (s *Store) parseFuel(text string) []domain.FuelRecord {
	rows := csvio.Parse(text, s.schemas["fuel"])
	out := make([]domain.FuelRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.FuelFromRow(r))
	}
	return out
}

// InsertAlert appends an alert, assigning an ID and created_at when the
// record has none. Returns the stored ID.
func (s *Store) InsertAlert(a domain.AlertRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = s.newID("alert")
	}
	if a.CreatedAt == "" {
		a.CreatedAt = s.now()
	}
	if a.IsActive == "" {
		a.IsActive = "TRUE"
	}
	return a.ID, s.appendLine("alerts", alertFields(a))
}

// InsertNews appends a news record, assigning an ID and processed_at
// when absent.
func (s *Store) InsertNews(n domain.NewsRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = s.newID("news")
	}
	if n.ProcessedAt == "" {
		n.ProcessedAt = s.now()
	}
	return n.ID, s.appendLine("news", newsFields(n))
}

// InsertWeather appends a weather snapshot, assigning an ID and
// timestamp when absent.
func (s *Store) InsertWeather(w domain.WeatherRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.ID == "" {
		w.ID = s.newID("weather")
	}
	if w.Timestamp == "" {
		w.Timestamp = s.now()
	}
	return w.ID, s.appendLine("weather", weatherFields(w))
}

// InsertFuel appends a fuel price snapshot unless one with the same
// date_str is already stored. Returns the stored ID and whether the
// record was inserted.
func (s *Store) InsertFuel(f domain.FuelRecord) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.DateStr == "" {
		f.DateStr = f.Date
	}

	text, err := s.readFile("fuel")
	if err != nil {
		return "", false, err
	}
	for _, existing := range s.parseFuel(text) {
		if existing.DateStr == f.DateStr {
			s.logger.Debug("fuel snapshot already stored", "date", f.DateStr)
			return existing.ID, false, nil
		}
	}

	if f.ID == "" {
		f.ID = s.newID("fuel")
	}
	if f.RecordedAt == "" {
		f.RecordedAt = s.now()
	}
	if f.ScrapedAt == "" {
		f.ScrapedAt = f.RecordedAt
	}
	return f.ID, true, s.appendLine("fuel", fuelFields(f))
}

// Alerts reads every stored alert.
func (s *Store) Alerts() ([]domain.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.readFile("alerts")
	if err != nil {
		return nil, err
	}
	return s.parseAlerts(text), nil
}

// ActiveAlerts reads alerts whose is_active cell reads TRUE.
func (s *Store) ActiveAlerts() ([]domain.AlertRecord, error) {
	all, err := s.Alerts()
	if err != nil {
		return nil, err
	}
	active := make([]domain.AlertRecord, 0, len(all))
	for _, a := range all {
		if a.Active() {
			active = append(active, a)
		}
	}
	return active, nil
}

// News reads every stored news record, oldest first.
func (s *Store) News() ([]domain.NewsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.readFile("news")
	if err != nil {
		return nil, err
	}
	return s.parseNews(text), nil
}

// RecentNews returns up to limit news records, newest first.
func (s *Store) RecentNews(limit int) ([]domain.NewsRecord, error) {
	all, err := s.News()
	if err != nil {
		return nil, err
	}
	recent := make([]domain.NewsRecord, 0, limit)
	for i := len(all) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, all[i])
	}
	return recent, nil
}

// Weather reads every stored weather snapshot.
func (s *Store) Weather() ([]domain.WeatherRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.readFile("weather")
	if err != nil {
		return nil, err
	}
	return s.parseWeather(text), nil
}

// LatestWeather returns the most recent snapshot per location.
func (s *Store) LatestWeather() ([]domain.WeatherRecord, error) {
	all, err := s.Weather()
	if err != nil {
		return nil, err
	}

	latest := map[string]domain.WeatherRecord{}
	var order []string
	for _, w := range all {
		if _, seen := latest[w.Location]; !seen {
			order = append(order, w.Location)
		}
		latest[w.Location] = w
	}

	out := make([]domain.WeatherRecord, 0, len(order))
	for _, loc := range order {
		out = append(out, latest[loc])
	}
	return out, nil
}

// FuelHistory returns up to limit fuel snapshots, newest first.
func (s *Store) FuelHistory(limit int) ([]domain.FuelRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.readFile("fuel")
	if err != nil {
		return nil, err
	}
	all := s.parseFuel(text)

	recent := make([]domain.FuelRecord, 0, limit)
	for i := len(all) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, all[i])
	}
	return recent, nil
}

// LatestFuelPrice returns the newest fuel snapshot, or false when none
// is stored yet.
func (s *Store) LatestFuelPrice() (domain.FuelRecord, bool, error) {
	history, err := s.FuelHistory(1)
	if err != nil {
		return domain.FuelRecord{}, false, err
	}
	if len(history) == 0 {
		return domain.FuelRecord{}, false, nil
	}
	return history[0], true, nil
}

// PriceStats summarizes one fuel price column across stored snapshots.
type PriceStats struct {
	Name    string  `json:"name"`
	Latest  float64 `json:"latest"`
	Change  float64 `json:"change"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// FuelStats computes per-column statistics over all stored snapshots.
// Zero prices are skipped: a zero means the source cell was blank or
// unparseable, not a free tank.
func (s *Store) FuelStats() ([]PriceStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.readFile("fuel")
	if err != nil {
		return nil, err
	}
	all := s.parseFuel(text)

	stats := make([]PriceStats, 0, 9)
	for i, field := range (domain.FuelRecord{}).Prices() {
		st := PriceStats{Name: field.Name}
		var sum float64
		var n int
		var prev float64
		for _, rec := range all {
			v := rec.Prices()[i].Value
			if v == 0 {
				continue
			}
			if n == 0 || v < st.Min {
				st.Min = v
			}
			if v > st.Max {
				st.Max = v
			}
			sum += v
			n++
			prev = st.Latest
			st.Latest = v
		}
		if n > 0 {
			st.Average = sum / float64(n)
		}
		if prev != 0 {
			st.Change = st.Latest - prev
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// ExpireAlerts flips is_active to FALSE on alerts whose end_time has
// passed. Returns how many were expired.
func (s *Store) ExpireAlerts() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.readFile("alerts")
	if err != nil {
		return 0, err
	}
	alerts := s.parseAlerts(text)
	now := domain.Clock().Now()

	expired := 0
	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		if a.Active() {
			if end, ok := parseTimestamp(a.EndTime); ok && end.Before(now) {
				a.IsActive = "FALSE"
				expired++
			}
		}
		rows = append(rows, alertFields(a))
	}

	if expired > 0 {
		if err := s.rewrite("alerts", rows); err != nil {
			return 0, err
		}
		s.logger.Info("expired alerts", "count", expired)
	}
	return expired, nil
}

// Cleanup removes news, weather, and inactive alert records older than
// the retention window. Records whose timestamp cannot be parsed are
// kept. Fuel history is never pruned. Returns how many records were
// removed.
func (s *Store) Cleanup(retention time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := domain.Clock().Now().Add(-retention)
	removed := 0

	text, err := s.readFile("news")
	if err != nil {
		return 0, err
	}
	var newsRows [][]string
	for _, n := range s.parseNews(text) {
		if ts, ok := parseTimestamp(n.ProcessedAt); ok && ts.Before(cutoff) {
			removed++
			continue
		}
		newsRows = append(newsRows, newsFields(n))
	}
	if err := s.rewrite("news", newsRows); err != nil {
		return removed, err
	}

	text, err = s.readFile("weather")
	if err != nil {
		return removed, err
	}
	var weatherRows [][]string
	for _, w := range s.parseWeather(text) {
		if ts, ok := parseTimestamp(w.Timestamp); ok && ts.Before(cutoff) {
			removed++
			continue
		}
		weatherRows = append(weatherRows, weatherFields(w))
	}
	if err := s.rewrite("weather", weatherRows); err != nil {
		return removed, err
	}

	text, err = s.readFile("alerts")
	if err != nil {
		return removed, err
	}
	var alertRows [][]string
	for _, a := range s.parseAlerts(text) {
		if !a.Active() {
			if ts, ok := parseTimestamp(a.CreatedAt); ok && ts.Before(cutoff) {
				removed++
				continue
			}
		}
		alertRows = append(alertRows, alertFields(a))
	}
	if err := s.rewrite("alerts", alertRows); err != nil {
		return removed, err
	}

	if removed > 0 {
		s.metrics.RecordsPruned.Add(float64(removed))
		s.logger.Info("cleanup removed records", "count", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// rewrite replaces a feed file with the given rows via a temp file and
// rename, so a crash mid-cleanup never truncates the feed.
func (s *Store) rewrite(feed string, rows [][]string) error {
	f := feedFiles[feed]
	path := filepath.Join(s.dir, f.file)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(csvio.Encode(f.columns, rows)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.file, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.file, err)
	}
	return nil
}

// RawFile returns the raw bytes of a feed file by file name. Unknown
// names are rejected so the API cannot be walked out of the data dir.
func (s *Store) RawFile(name string) ([]byte, error) {
	known := false
	for _, f := range feedFiles {
		if f.file == name {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown feed file %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// timestampFormats are tried in order when parsing stored timestamps.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func marshalList(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func alertFields(a domain.AlertRecord) []string {
	return []string{
		a.ID, a.Title, a.Description, a.Category, a.Subcategory,
		a.Location, a.Severity, a.Source, a.SourceID, a.StartTime,
		a.EndTime, a.CreatedAt, a.IsActive,
	}
}

func newsFields(n domain.NewsRecord) []string {
	return []string{
		n.ID, n.Title, n.Summary, n.FullText, n.Link, n.Source,
		n.Category, n.Subcategory, n.Location, n.Impact, n.Severity,
		marshalList(n.Keywords), n.Date, n.ProcessedAt,
	}
}

func weatherFields(w domain.WeatherRecord) []string {
	return []string{
		w.ID, w.Location, formatFloat(w.Temperature), formatFloat(w.FeelsLike),
		formatFloat(w.Humidity), w.Weather, w.Description,
		formatFloat(w.WindSpeed), formatFloat(w.Rain),
		marshalList(w.Alerts), marshalList(w.Forecast), w.Timestamp,
	}
}

func fuelFields(f domain.FuelRecord) []string {
	fields := []string{f.ID, f.Date, f.DateStr}
	for _, p := range f.Prices() {
		fields = append(fields, formatFloat(p.Value))
	}
	return append(fields, f.Location, f.Source, f.ScrapedAt, f.RecordedAt)
}
