package weatherapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harithj/lanka-sitrep/internal/config"
	"github.com/harithj/lanka-sitrep/internal/domain"
)

const testAPIKey = "test-key"

var colombo = config.District{Name: "Colombo", Lat: 6.9271, Lon: 79.8612}

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testAPIKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func testHandler(t *testing.T, current currentResponse, forecast forecastResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAPIKey, r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "6.9271", r.URL.Query().Get("lat"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/weather":
			require.NoError(t, json.NewEncoder(w).Encode(current))
		case "/forecast":
			require.NoError(t, json.NewEncoder(w).Encode(forecast))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestClient_Snapshot(t *testing.T) {
	current := currentResponse{
		Weather: []weatherEntry{{Main: "Rain", Description: "moderate rain"}},
		Main:    mainBlock{Temp: 28.5, FeelsLike: 32.1, Humidity: 84},
		Wind:    windBlock{Speed: 4.2},
		Rain:    rainBlock{OneHour: 2.5},
	}
	forecast := forecastResponse{List: []forecastItem{
		{Main: mainBlock{Temp: 27.9}, Weather: []weatherEntry{{Description: "light rain"}}, Rain: forecastRain{ThreeHour: 1.2}, DtTxt: "2026-03-01 15:00:00"},
		{Main: mainBlock{Temp: 26.4}, DtTxt: "2026-03-01 18:00:00"},
	}}

	srv := httptest.NewServer(testHandler(t, current, forecast))
	defer srv.Close()

	rec, err := testClient(srv.URL).Snapshot(context.Background(), colombo)
	require.NoError(t, err)

	assert.Equal(t, "Colombo", rec.Location)
	assert.Equal(t, 28.5, rec.Temperature)
	assert.Equal(t, 32.1, rec.FeelsLike)
	assert.Equal(t, 84.0, rec.Humidity)
	assert.Equal(t, "Rain", rec.Weather)
	assert.Equal(t, "moderate rain", rec.Description)
	assert.Equal(t, 4.2, rec.WindSpeed)
	assert.Equal(t, 2.5, rec.Rain)

	require.Len(t, rec.Forecast, 2)
	assert.Equal(t, "2026-03-01 15:00:00", rec.Forecast[0].Time)
	assert.Equal(t, 27.9, rec.Forecast[0].Temperature)
	assert.Equal(t, 1.2, rec.Forecast[0].Rain)
	assert.Equal(t, "light rain", rec.Forecast[0].Description)

	assert.Empty(t, rec.Alerts, "moderate conditions must not synthesize alerts")
}

func TestClient_Snapshot_ForecastFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/forecast" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(currentResponse{Main: mainBlock{Temp: 30}}))
	}))
	defer srv.Close()

	rec, err := testClient(srv.URL).Snapshot(context.Background(), colombo)
	require.NoError(t, err)
	assert.Equal(t, 30.0, rec.Temperature)
	assert.Empty(t, rec.Forecast)
	assert.NotNil(t, rec.Forecast, "empty list, never nil")
}

func TestClient_Snapshot_CurrentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Snapshot(context.Background(), colombo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_Snapshot_ForecastCapped(t *testing.T) {
	items := make([]forecastItem, 20)
	for i := range items {
		items[i] = forecastItem{Main: mainBlock{Temp: float64(20 + i)}}
	}
	srv := httptest.NewServer(testHandler(t, currentResponse{}, forecastResponse{List: items}))
	defer srv.Close()

	rec, err := testClient(srv.URL).Snapshot(context.Background(), colombo)
	require.NoError(t, err)
	assert.Len(t, rec.Forecast, 8)
}

func TestDeriveAlerts(t *testing.T) {
	t.Run("heavy rain", func(t *testing.T) {
		alerts := deriveAlerts(domainRecord(12.0, 5, 30, "Matara"))
		require.Len(t, alerts, 1)
		assert.Equal(t, "Heavy Rain", alerts[0].Event)
		assert.Equal(t, "high", alerts[0].Severity)
		assert.Contains(t, alerts[0].Description, "Matara")
	})

	t.Run("strong wind and heat stack", func(t *testing.T) {
		alerts := deriveAlerts(domainRecord(0, 17.5, 38.2, "Jaffna"))
		require.Len(t, alerts, 2)
		assert.Equal(t, "Strong Winds", alerts[0].Event)
		assert.Equal(t, "Extreme Heat", alerts[1].Event)
	})

	t.Run("calm conditions", func(t *testing.T) {
		assert.Empty(t, deriveAlerts(domainRecord(0, 3, 29, "Galle")))
	})
}

func domainRecord(rain, wind, temp float64, location string) domain.WeatherRecord {
	return domain.WeatherRecord{
		Rain:        rain,
		WindSpeed:   wind,
		Temperature: temp,
		Location:    location,
	}
}
