package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/harithj/lanka-sitrep/internal/csvio"
	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
)

// FuelStore is the slice of the store the fuel collector needs.
type FuelStore interface {
	InsertFuel(f domain.FuelRecord) (string, bool, error)
	LatestFuelPrice() (domain.FuelRecord, bool, error)
	InsertAlert(a domain.AlertRecord) (string, error)
}

// FuelCollector scrapes the Ceypetco price table and stores one dated
// snapshot per revision. A price change raises an alert.
type FuelCollector struct {
	url     string
	store   FuelStore
	client  *http.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFuelCollector creates a collector for the given price page.
func NewFuelCollector(url string, store FuelStore, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *FuelCollector {
	return &FuelCollector{
		url:     url,
		store:   store,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// Run scrapes the price page once and stores the snapshot unless one
// with the same date is already on file.
func (c *FuelCollector) Run(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "lanka-sitrep/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch fuel prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return err
	}

	rec, found := parseFuelTable(doc)
	if !found {
		return fmt.Errorf("no price table found at %s", c.url)
	}
	rec.Location = "Islandwide"
	rec.Source = "Ceypetco"

	previous, hadPrevious, err := c.store.LatestFuelPrice()
	if err != nil {
		return err
	}

	id, inserted, err := c.store.InsertFuel(rec)
	if err != nil {
		return err
	}
	if !inserted {
		c.logger.Debug("fuel snapshot unchanged", "date", rec.DateStr)
		return nil
	}
	c.metrics.RecordsParsed.WithLabelValues("fuel").Inc()
	c.logger.Info("fuel snapshot stored", "id", id, "date", rec.DateStr)

	if hadPrevious {
		if changes := priceChanges(previous, rec); changes != "" {
			_, err := c.store.InsertAlert(domain.AlertRecord{
				Title:       "Fuel price revision",
				Description: changes,
				Category:    "economy",
				Subcategory: "fuel_prices",
				Location:    "Islandwide",
				Severity:    "medium",
				Source:      "Ceypetco",
				SourceID:    id,
				StartTime:   rec.Date,
			})
			if err != nil {
				return err
			}
			c.metrics.AlertsPublished.Inc()
		}
	}
	return nil
}

// productFields maps lowercase product-name fragments to fuel columns,
// checked in order so the more specific names win.
var productFields = []struct {
	match []string
	field string
}{
	{[]string{"petrol", "95"}, "petrol_95"},
	{[]string{"petrol", "92"}, "petrol_92"},
	{[]string{"super", "diesel"}, "super_diesel"},
	{[]string{"auto", "diesel"}, "auto_diesel"},
	{[]string{"industrial", "kerosene"}, "industrial_kerosene"},
	{[]string{"kerosene"}, "kerosene"},
	{[]string{"furnace", "800"}, "furnace_800"},
	{[]string{"furnace", "1500", "high"}, "furnace_1500_high"},
	{[]string{"furnace", "1500", "low"}, "furnace_1500_low"},
	{[]string{"furnace", "1500"}, "furnace_1500_high"},
}

func parseFuelTable(doc *goquery.Document) (domain.FuelRecord, bool) {
	prices := map[string]float64{}

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th,td")
		if cells.Length() < 2 {
			return
		}
		product := strings.ToLower(strings.TrimSpace(cells.First().Text()))
		price := cleanPrice(cells.Last().Text())
		if product == "" || price == 0 {
			return
		}
		for _, pf := range productFields {
			if containsAll(product, pf.match) {
				if _, taken := prices[pf.field]; !taken {
					prices[pf.field] = price
				}
				break
			}
		}
	})

	if len(prices) == 0 {
		return domain.FuelRecord{}, false
	}

	date := extractEffectiveDate(doc)
	rec := domain.FuelRecord{
		Date:               date,
		DateStr:            date,
		Petrol95:           prices["petrol_95"],
		Petrol92:           prices["petrol_92"],
		AutoDiesel:         prices["auto_diesel"],
		SuperDiesel:        prices["super_diesel"],
		Kerosene:           prices["kerosene"],
		IndustrialKerosene: prices["industrial_kerosene"],
		Furnace800:         prices["furnace_800"],
		Furnace1500High:    prices["furnace_1500_high"],
		Furnace1500Low:     prices["furnace_1500_low"],
	}
	return rec, true
}

// cleanPrice strips currency decoration ("Rs. 371.00", "1,250/-") down
// to a float. Unparseable text comes back as 0.
func cleanPrice(s string) float64 {
	s = strings.TrimSpace(s)
	for _, junk := range []string{"rs.", "rs", "Rs.", "Rs", "LKR", "/-", ","} {
		s = strings.ReplaceAll(s, junk, "")
	}
	return csvio.Float(strings.TrimSpace(s))
}

// fuelDateFormats are the date spellings seen on the price page.
var fuelDateFormats = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"02 January 2006",
	"January 2, 2006",
	"2 January 2006",
}

// extractEffectiveDate looks for a date near the table caption, falling
// back to the current date.
func extractEffectiveDate(doc *goquery.Document) string {
	found := ""
	doc.Find("h1,h2,h3,caption,p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		for _, word := range strings.FieldsFunc(text, func(r rune) bool { return r == '(' || r == ')' }) {
			word = strings.TrimSpace(word)
			for _, layout := range fuelDateFormats {
				if t, err := time.Parse(layout, word); err == nil {
					found = t.Format("2006-01-02")
					return false
				}
			}
		}
		return true
	})
	if found != "" {
		return found
	}
	return domain.Clock().Now().UTC().Format("2006-01-02")
}

func containsAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

// priceChanges describes the per-product deltas between two snapshots,
// or "" when nothing moved.
func priceChanges(prev, next domain.FuelRecord) string {
	var parts []string
	prevPrices := prev.Prices()
	for i, p := range next.Prices() {
		old := prevPrices[i].Value
		if p.Value == 0 || old == 0 || p.Value == old {
			continue
		}
		direction := "up"
		if p.Value < old {
			direction = "down"
		}
		parts = append(parts, fmt.Sprintf("%s %s from %.2f to %.2f", p.Name, direction, old, p.Value))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Fuel prices revised: " + strings.Join(parts, "; ")
}
