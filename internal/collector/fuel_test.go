package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
)

const fuelPage = `<html><body>
<h2>Selling Prices (01.03.2026)</h2>
<table>
<tr><th>Product</th><th>Price (Rs.)</th></tr>
<tr><td>Lanka Petrol 92 Octane</td><td>Rs. 371.00</td></tr>
<tr><td>Lanka Petrol 95 Octane Euro 4</td><td>Rs. 429.00</td></tr>
<tr><td>Lanka Auto Diesel</td><td>Rs. 340.00</td></tr>
<tr><td>Lanka Super Diesel 4 Star Euro 4</td><td>Rs. 367.00</td></tr>
<tr><td>Lanka Kerosene</td><td>Rs. 185.00</td></tr>
<tr><td>Lanka Industrial Kerosene</td><td>Rs. 1,250.00</td></tr>
</table>
</body></html>`

func TestParseFuelTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fuelPage))
	require.NoError(t, err)

	rec, found := parseFuelTable(doc)
	require.True(t, found)

	assert.Equal(t, "2026-03-01", rec.Date)
	assert.Equal(t, "2026-03-01", rec.DateStr)
	assert.Equal(t, 371.0, rec.Petrol92)
	assert.Equal(t, 429.0, rec.Petrol95)
	assert.Equal(t, 340.0, rec.AutoDiesel)
	assert.Equal(t, 367.0, rec.SuperDiesel)
	assert.Equal(t, 185.0, rec.Kerosene)
	assert.Equal(t, 1250.0, rec.IndustrialKerosene)
	assert.Equal(t, 0.0, rec.Furnace800)
}

func TestParseFuelTable_NoTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>maintenance</p></body></html>"))
	require.NoError(t, err)

	_, found := parseFuelTable(doc)
	assert.False(t, found)
}

func TestCleanPrice(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
	}{
		{"Rs. 371.00", 371},
		{"371.00", 371},
		{"1,250/-", 1250},
		{"LKR 185.00", 185},
		{"", 0},
		{"N/A", 0},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, cleanPrice(tc.in))
		})
	}
}

func TestFuelCollector_Run(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fuelPage))
	}))
	defer srv.Close()

	s := newCollectorStore(t)
	c := NewFuelCollector(srv.URL, s, 5*time.Second, testLogger, observability.NewMetricsForTesting())

	require.NoError(t, c.Run(context.Background()))

	latest, ok, err := s.LatestFuelPrice()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-03-01", latest.DateStr)
	assert.Equal(t, 371.0, latest.Petrol92)
	assert.Equal(t, "Ceypetco", latest.Source)
	assert.Equal(t, "Islandwide", latest.Location)

	// Same page again: same date, nothing new stored, no alert.
	require.NoError(t, c.Run(context.Background()))

	history, err := s.FuelHistory(10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	alerts, err := s.Alerts()
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestFuelCollector_PriceChangeRaisesAlert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fuelPage))
	}))
	defer srv.Close()

	s := newCollectorStore(t)
	_, _, err := s.InsertFuel(domain.FuelRecord{
		Date:     "2026-02-01",
		DateStr:  "2026-02-01",
		Petrol92: 361,
		Petrol95: 429,
	})
	require.NoError(t, err)

	c := NewFuelCollector(srv.URL, s, 5*time.Second, testLogger, observability.NewMetricsForTesting())
	require.NoError(t, c.Run(context.Background()))

	alerts, err := s.Alerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "Fuel price revision", a.Title)
	assert.Equal(t, "economy", a.Category)
	assert.Equal(t, "fuel_prices", a.Subcategory)
	assert.Contains(t, a.Description, "petrol_92 up from 361.00 to 371.00")
	assert.NotContains(t, a.Description, "petrol_95", "unchanged price must not be reported")
	assert.True(t, a.Active())
}

func TestPriceChanges_NothingMoved(t *testing.T) {
	rec := domain.FuelRecord{Petrol92: 371}
	assert.Empty(t, priceChanges(rec, rec))
}
