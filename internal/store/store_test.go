package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), testLogger, observability.NewMetricsForTesting())
	require.NoError(t, err)
	return s
}

func freezeClock(t *testing.T, at time.Time) *clockwork.FakeClock {
	t.Helper()
	fake := clockwork.NewFakeClockAt(at)
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })
	return fake
}

func TestNew_InitializesFeedFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := New(dir, testLogger, observability.NewMetricsForTesting())
	require.NoError(t, err)

	for _, file := range []string{AlertsFile, NewsFile, WeatherFile, FuelFile} {
		data, err := os.ReadFile(filepath.Join(dir, file))
		require.NoError(t, err, file)
		assert.Equal(t, 1, strings.Count(string(data), "\n"), "%s should hold only the header row", file)
	}
}

func TestNew_KeepsExistingData(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, testLogger, observability.NewMetricsForTesting())
	require.NoError(t, err)

	_, err = s.InsertNews(domain.NewsRecord{Title: "first run"})
	require.NoError(t, err)

	// Reopening must not re-init the file.
	s2, err := New(dir, testLogger, observability.NewMetricsForTesting())
	require.NoError(t, err)

	news, err := s2.News()
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "first run", news[0].Title)
}

func TestInsertNews_AssignsIDAndTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeClock(t, at)
	s := newTestStore(t)

	id, err := s.InsertNews(domain.NewsRecord{Title: "Flooding in Galle"})
	require.NoError(t, err)
	assert.Equal(t, "news_1772366400000", id)

	news, err := s.News()
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, id, news[0].ID)
	assert.Equal(t, "2026-03-01T12:00:00Z", news[0].ProcessedAt)
}

func TestNewID_MonotonicWithinMillisecond(t *testing.T) {
	freezeClock(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestStore(t)

	id1, err := s.InsertNews(domain.NewsRecord{Title: "a"})
	require.NoError(t, err)
	id2, err := s.InsertNews(domain.NewsRecord{Title: "b"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestInsertNews_RoundTripsQuotedFields(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertNews(domain.NewsRecord{
		Title:    `Minister says "no comment", walks out`,
		Summary:  "line with, commas",
		Keywords: []string{"road", "accident"},
	})
	require.NoError(t, err)

	news, err := s.News()
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, `Minister says "no comment", walks out`, news[0].Title)
	assert.Equal(t, "line with, commas", news[0].Summary)
	assert.Equal(t, []string{"road", "accident"}, news[0].Keywords)
}

func TestInsertAlert_RoundTripsQuotedFields(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertAlert(domain.AlertRecord{
		Title:       `Lane closure, "stage two" works`,
		Description: `crews report "slow going", expect delays`,
		Category:    "traffic",
	})
	require.NoError(t, err)

	alerts, err := s.Alerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, `Lane closure, "stage two" works`, alerts[0].Title)
	assert.Equal(t, `crews report "slow going", expect delays`, alerts[0].Description)
}

func TestInsertWeather_RoundTripsNestedJSON(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertWeather(domain.WeatherRecord{
		Location:    "Colombo",
		Temperature: 28.5,
		Forecast: []domain.ForecastEntry{
			{Time: "2026-03-01T15:00", Temperature: 29.1, Description: "light rain", Rain: 2.5},
		},
		Alerts: []domain.WeatherAlert{
			{Event: "Flood Warning", Description: "river levels rising", Severity: "high"},
		},
	})
	require.NoError(t, err)

	all, err := s.Weather()
	require.NoError(t, err)
	require.Len(t, all, 1)

	w := all[0]
	assert.Equal(t, 28.5, w.Temperature)
	require.Len(t, w.Forecast, 1)
	assert.Equal(t, 29.1, w.Forecast[0].Temperature)
	require.Len(t, w.Alerts, 1)
	assert.Equal(t, "Flood Warning", w.Alerts[0].Event)
}

func TestInsertAlert_DefaultsActive(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertAlert(domain.AlertRecord{Title: "Road closed"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	active, err := s.ActiveAlerts()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].Active())
}

func TestActiveAlerts_FiltersInactive(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertAlert(domain.AlertRecord{Title: "old", IsActive: "FALSE"})
	require.NoError(t, err)
	_, err = s.InsertAlert(domain.AlertRecord{Title: "current", IsActive: "true"})
	require.NoError(t, err)

	active, err := s.ActiveAlerts()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "current", active[0].Title)
}

func TestInsertFuel_DedupesOnDateStr(t *testing.T) {
	s := newTestStore(t)

	id1, inserted, err := s.InsertFuel(domain.FuelRecord{DateStr: "2026-03-01", Petrol92: 371})
	require.NoError(t, err)
	assert.True(t, inserted)

	id2, inserted, err := s.InsertFuel(domain.FuelRecord{DateStr: "2026-03-01", Petrol92: 375})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, id1, id2)

	history, err := s.FuelHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 371.0, history[0].Petrol92)
}

func TestRecentNews_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	for _, title := range []string{"first", "second", "third"} {
		_, err := s.InsertNews(domain.NewsRecord{Title: title})
		require.NoError(t, err)
	}

	recent, err := s.RecentNews(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Title)
	assert.Equal(t, "second", recent[1].Title)
}

func TestLatestWeather_OneSnapshotPerLocation(t *testing.T) {
	s := newTestStore(t)

	for _, w := range []domain.WeatherRecord{
		{Location: "Colombo", Temperature: 28},
		{Location: "Kandy", Temperature: 22},
		{Location: "Colombo", Temperature: 31},
	} {
		_, err := s.InsertWeather(w)
		require.NoError(t, err)
	}

	latest, err := s.LatestWeather()
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "Colombo", latest[0].Location)
	assert.Equal(t, 31.0, latest[0].Temperature)
	assert.Equal(t, "Kandy", latest[1].Location)
}

func TestLatestFuelPrice(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.LatestFuelPrice()
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.InsertFuel(domain.FuelRecord{DateStr: "2026-02-01", Petrol92: 365})
	require.NoError(t, err)
	_, _, err = s.InsertFuel(domain.FuelRecord{DateStr: "2026-03-01", Petrol92: 371})
	require.NoError(t, err)

	latest, ok, err := s.LatestFuelPrice()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-03-01", latest.DateStr)
	assert.Equal(t, 371.0, latest.Petrol92)
}

func TestFuelStats(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.InsertFuel(domain.FuelRecord{DateStr: "d1", Petrol92: 360, AutoDiesel: 320})
	require.NoError(t, err)
	_, _, err = s.InsertFuel(domain.FuelRecord{DateStr: "d2", Petrol92: 370, AutoDiesel: 310})
	require.NoError(t, err)

	stats, err := s.FuelStats()
	require.NoError(t, err)
	require.Len(t, stats, 9)

	byName := map[string]PriceStats{}
	for _, st := range stats {
		byName[st.Name] = st
	}

	p92 := byName["petrol_92"]
	assert.Equal(t, 370.0, p92.Latest)
	assert.Equal(t, 10.0, p92.Change)
	assert.Equal(t, 360.0, p92.Min)
	assert.Equal(t, 370.0, p92.Max)
	assert.Equal(t, 365.0, p92.Average)

	diesel := byName["auto_diesel"]
	assert.Equal(t, 310.0, diesel.Latest)
	assert.Equal(t, -10.0, diesel.Change)

	// Columns never priced stay all-zero instead of skewing stats.
	assert.Equal(t, 0.0, byName["kerosene"].Latest)
	assert.Equal(t, 0.0, byName["kerosene"].Average)
}

func TestExpireAlerts(t *testing.T) {
	freezeClock(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := newTestStore(t)

	_, err := s.InsertAlert(domain.AlertRecord{Title: "over", EndTime: "2026-03-01T10:00:00Z"})
	require.NoError(t, err)
	_, err = s.InsertAlert(domain.AlertRecord{Title: "ongoing", EndTime: "2026-03-01T18:00:00Z"})
	require.NoError(t, err)
	_, err = s.InsertAlert(domain.AlertRecord{Title: "open-ended"})
	require.NoError(t, err)

	expired, err := s.ExpireAlerts()
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	active, err := s.ActiveAlerts()
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "ongoing", active[0].Title)
	assert.Equal(t, "open-ended", active[1].Title)
}

func TestCleanup(t *testing.T) {
	fake := freezeClock(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s := newTestStore(t)

	_, err := s.InsertNews(domain.NewsRecord{Title: "stale"})
	require.NoError(t, err)
	_, err = s.InsertWeather(domain.WeatherRecord{Location: "Galle"})
	require.NoError(t, err)
	_, _, err = s.InsertFuel(domain.FuelRecord{DateStr: "2026-03-01", Petrol92: 371})
	require.NoError(t, err)

	fake.Advance(10 * 24 * time.Hour)

	_, err = s.InsertNews(domain.NewsRecord{Title: "fresh"})
	require.NoError(t, err)

	removed, err := s.Cleanup(7 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	news, err := s.News()
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "fresh", news[0].Title)

	weather, err := s.Weather()
	require.NoError(t, err)
	assert.Empty(t, weather)

	// Fuel history is retained indefinitely.
	history, err := s.FuelHistory(10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCleanup_KeepsUnparseableTimestamps(t *testing.T) {
	freezeClock(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s := newTestStore(t)

	_, err := s.InsertNews(domain.NewsRecord{Title: "odd clock", ProcessedAt: "sometime last week"})
	require.NoError(t, err)

	removed, err := s.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	news, err := s.News()
	require.NoError(t, err)
	assert.Len(t, news, 1)
}

func TestRawFile(t *testing.T) {
	s := newTestStore(t)

	_, err := s.InsertAlert(domain.AlertRecord{Title: "Road closed"})
	require.NoError(t, err)

	data, err := s.RawFile(AlertsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Road closed")

	_, err = s.RawFile("../secrets.csv")
	require.Error(t, err)
}
