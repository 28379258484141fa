package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harithj/lanka-sitrep/internal/config"
	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
)

// WeatherClient fetches a current-conditions snapshot for a district.
type WeatherClient interface {
	Snapshot(ctx context.Context, d config.District) (domain.WeatherRecord, error)
}

// WeatherStore is the slice of the store the weather collector needs.
type WeatherStore interface {
	InsertWeather(w domain.WeatherRecord) (string, error)
}

// WeatherCollector stores one snapshot per configured district each run.
type WeatherCollector struct {
	districts []config.District
	client    WeatherClient
	store     WeatherStore
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewWeatherCollector creates a collector over the given districts.
func NewWeatherCollector(districts []config.District, client WeatherClient, store WeatherStore, logger *slog.Logger, metrics *observability.Metrics) *WeatherCollector {
	return &WeatherCollector{
		districts: districts,
		client:    client,
		store:     store,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run fetches and stores every district once. Districts that fail are
// logged and skipped; the run only errors when none succeed.
func (c *WeatherCollector) Run(ctx context.Context) error {
	ok := 0
	for _, d := range c.districts {
		snap, err := c.client.Snapshot(ctx, d)
		if err != nil {
			c.logger.Warn("weather fetch failed", "district", d.Name, "error", err)
			continue
		}
		if snap.Location == "" {
			snap.Location = d.Name
		}

		if _, err := c.store.InsertWeather(snap); err != nil {
			return err
		}
		ok++
		c.metrics.RecordsParsed.WithLabelValues("weather").Inc()
	}

	if ok == 0 && len(c.districts) > 0 {
		return fmt.Errorf("weather unavailable for all %d districts", len(c.districts))
	}
	c.logger.Info("weather collection complete", "districts", ok)
	return nil
}
