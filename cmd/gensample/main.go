// Command gensample writes a deterministic set of sample feed CSVs for
// local dashboard development and for smoke-testing consumers. It goes
// through the real store and classifier so the output matches what the
// collectors would produce.
//
// Usage:
//
//	go run ./cmd/gensample -out data/sample
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
	"github.com/harithj/lanka-sitrep/internal/store"
)

var baseDate = time.Date(2026, time.March, 1, 6, 0, 0, 0, time.UTC)

var sampleHeadlines = []struct {
	title   string
	summary string
	source  string
}{
	{"Fatal accident on Colombo-Katunayake expressway", "Two killed and five injured in a multi-vehicle collision near the airport interchange.", "Ada Derana"},
	{"Heavy rain triggers flooding in Ratnapura", "Low-lying areas inundated after overnight rainfall; residents advised to move to higher ground.", "Daily Mirror"},
	{"Police arrest three suspects after Kandy robbery", "Suspects taken into custody following a jewellery store break-in.", "News First"},
	{"Minister announces new fuel subsidy policy", "Government outlines revised pricing formula for essential fuels.", "Daily Mirror"},
	{"School cricket festival concludes in Galle", "Annual inter-school tournament wraps up with record attendance.", "Ada Derana"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/sample", "output directory for sample CSVs")
	flag.Parse()

	// Fixed clock for reproducible IDs and timestamps.
	clock := clockwork.NewFakeClockAt(baseDate)
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.New(*out, logger, observability.NewMetricsForTesting())
	if err != nil {
		return err
	}

	var newsIDs []string
	for _, h := range sampleHeadlines {
		verdict := domain.Classify(h.title + " " + h.summary)
		id, err := st.InsertNews(domain.NewsRecord{
			Title:       h.title,
			Summary:     h.summary,
			Source:      h.source,
			Category:    verdict.Category,
			Subcategory: verdict.Subcategory,
			Location:    verdict.Location,
			Impact:      verdict.Impact,
			Severity:    verdict.Severity,
			Keywords:    []string{},
			Date:        clock.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("sample news: %w", err)
		}
		newsIDs = append(newsIDs, id)
		clock.Advance(7 * time.Minute)
	}

	ratnapuraTS := baseDate.Add(40 * time.Minute).Format(time.RFC3339)
	weather := []domain.WeatherRecord{
		{
			Location: "Colombo", Temperature: 31.2, FeelsLike: 35.8, Humidity: 78,
			Weather: "Clouds", Description: "scattered clouds", WindSpeed: 4.2, Rain: 0,
			Alerts: []domain.WeatherAlert{},
			Forecast: []domain.ForecastEntry{
				{Time: "2026-03-01 09:00:00", Temperature: 32.0, Description: "scattered clouds", Rain: 0},
				{Time: "2026-03-01 12:00:00", Temperature: 33.1, Description: "light rain", Rain: 0.8},
			},
		},
		{
			Location: "Ratnapura", Temperature: 26.4, FeelsLike: 28.9, Humidity: 94,
			Weather: "Rain", Description: "heavy intensity rain", WindSpeed: 3.1, Rain: 14.5,
			Timestamp: ratnapuraTS,
			Alerts: []domain.WeatherAlert{
				{Event: "Heavy Rain", Description: "Rainfall of 14.5 mm recorded in Ratnapura within the last hour", Severity: "high"},
			},
			Forecast: []domain.ForecastEntry{
				{Time: "2026-03-01 09:00:00", Temperature: 25.8, Description: "heavy intensity rain", Rain: 9.2},
			},
		},
	}
	for _, w := range weather {
		if _, err := st.InsertWeather(w); err != nil {
			return fmt.Errorf("sample weather: %w", err)
		}
		clock.Advance(time.Minute)
	}

	alerts := []domain.AlertRecord{
		{
			Title: "Flood warning for Ratnapura district", Description: "River levels rising after sustained rainfall.",
			Category: "weather", Subcategory: "floods", Location: "Ratnapura", Severity: "high",
			Source: "weather", SourceID: "weather_Ratnapura_" + ratnapuraTS + "_0",
			StartTime: baseDate.Format(time.RFC3339), EndTime: baseDate.Add(6 * time.Hour).Format(time.RFC3339),
		},
		{
			Title: `Lane closure on Galle Road, "stage two" works`, Description: "Single lane traffic between Wellawatte and Dehiwala until further notice.",
			Category: "traffic", Subcategory: "road_closures", Location: "Colombo", Severity: "medium",
			Source: "Ada Derana", SourceID: newsIDs[0],
			StartTime: baseDate.Format(time.RFC3339),
		},
	}
	for _, a := range alerts {
		if _, err := st.InsertAlert(a); err != nil {
			return fmt.Errorf("sample alerts: %w", err)
		}
		clock.Advance(time.Minute)
	}

	fuel := []domain.FuelRecord{
		{Date: "2026-02-01", DateStr: "2026-02-01", Petrol95: 424, Petrol92: 361, AutoDiesel: 334, SuperDiesel: 361, Kerosene: 183, Location: "Islandwide", Source: "Ceypetco"},
		{Date: "2026-03-01", DateStr: "2026-03-01", Petrol95: 429, Petrol92: 371, AutoDiesel: 340, SuperDiesel: 367, Kerosene: 185, Location: "Islandwide", Source: "Ceypetco"},
	}
	for _, f := range fuel {
		if _, _, err := st.InsertFuel(f); err != nil {
			return fmt.Errorf("sample fuel: %w", err)
		}
		clock.Advance(time.Minute)
	}

	log.Printf("sample data written to %s", *out)
	return nil
}
