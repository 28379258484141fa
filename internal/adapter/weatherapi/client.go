// Package weatherapi fetches current conditions and short-range
// forecasts from the OpenWeather API and maps them onto weather
// records.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/harithj/lanka-sitrep/internal/config"
	"github.com/harithj/lanka-sitrep/internal/domain"
)

// Client implements collector.WeatherClient against OpenWeather.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Snapshot fetches current conditions plus forecast for a district and
// assembles one weather record.
func (c *Client) Snapshot(ctx context.Context, d config.District) (domain.WeatherRecord, error) {
	current, err := c.fetchCurrent(ctx, d)
	if err != nil {
		return domain.WeatherRecord{}, err
	}

	rec := domain.WeatherRecord{
		Location:    d.Name,
		Temperature: current.Main.Temp,
		FeelsLike:   current.Main.FeelsLike,
		Humidity:    current.Main.Humidity,
		WindSpeed:   current.Wind.Speed,
		Rain:        current.Rain.OneHour,
		Alerts:      []domain.WeatherAlert{},
		Forecast:    []domain.ForecastEntry{},
	}
	if len(current.Weather) > 0 {
		rec.Weather = current.Weather[0].Main
		rec.Description = current.Weather[0].Description
	}

	// Forecast failures degrade the snapshot instead of losing it.
	forecast, err := c.fetchForecast(ctx, d)
	if err != nil {
		c.logger.Warn("forecast fetch failed", "district", d.Name, "error", err)
	} else {
		rec.Forecast = forecast
	}

	rec.Alerts = deriveAlerts(rec)
	return rec, nil
}

func (c *Client) fetchCurrent(ctx context.Context, d config.District) (*currentResponse, error) {
	var out currentResponse
	if err := c.get(ctx, "/weather", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) fetchForecast(ctx context.Context, d config.District) ([]domain.ForecastEntry, error) {
	var out forecastResponse
	if err := c.get(ctx, "/forecast", d, &out); err != nil {
		return nil, err
	}

	// Next 24 hours: eight 3-hour steps.
	n := len(out.List)
	if n > 8 {
		n = 8
	}
	entries := make([]domain.ForecastEntry, 0, n)
	for _, item := range out.List[:n] {
		e := domain.ForecastEntry{
			Time:        item.DtTxt,
			Temperature: item.Main.Temp,
			Rain:        item.Rain.ThreeHour,
		}
		if len(item.Weather) > 0 {
			e.Description = item.Weather[0].Description
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, d config.District, out any) error {
	params := url.Values{
		"lat":   {strconv.FormatFloat(d.Lat, 'f', 4, 64)},
		"lon":   {strconv.FormatFloat(d.Lon, 'f', 4, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Severe-condition thresholds for synthesized alerts.
const (
	heavyRainMM       = 10.0
	strongWindMS      = 15.0
	heatwaveThreshold = 37.0
)

// deriveAlerts synthesizes weather alerts from threshold breaches in
// the snapshot itself.
func deriveAlerts(rec domain.WeatherRecord) []domain.WeatherAlert {
	alerts := []domain.WeatherAlert{}
	if rec.Rain >= heavyRainMM {
		alerts = append(alerts, domain.WeatherAlert{
			Event:       "Heavy Rain",
			Description: fmt.Sprintf("Rainfall of %.1f mm recorded in %s within the last hour", rec.Rain, rec.Location),
			Severity:    "high",
		})
	}
	if rec.WindSpeed >= strongWindMS {
		alerts = append(alerts, domain.WeatherAlert{
			Event:       "Strong Winds",
			Description: fmt.Sprintf("Wind speeds of %.1f m/s recorded in %s", rec.WindSpeed, rec.Location),
			Severity:    "medium",
		})
	}
	if rec.Temperature >= heatwaveThreshold {
		alerts = append(alerts, domain.WeatherAlert{
			Event:       "Extreme Heat",
			Description: fmt.Sprintf("Temperature of %.1f C recorded in %s", rec.Temperature, rec.Location),
			Severity:    "medium",
		})
	}
	return alerts
}

// OpenWeather API response types.

type currentResponse struct {
	Weather []weatherEntry `json:"weather"`
	Main    mainBlock      `json:"main"`
	Wind    windBlock      `json:"wind"`
	Rain    rainBlock      `json:"rain"`
}

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	Main    mainBlock      `json:"main"`
	Weather []weatherEntry `json:"weather"`
	Rain    forecastRain   `json:"rain"`
	DtTxt   string         `json:"dt_txt"`
}

type weatherEntry struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type mainBlock struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
}

type rainBlock struct {
	OneHour float64 `json:"1h"`
}

type forecastRain struct {
	ThreeHour float64 `json:"3h"`
}
