package collector

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
)

// AlertStore is the slice of the store the alert generator needs.
type AlertStore interface {
	Alerts() ([]domain.AlertRecord, error)
	InsertAlert(a domain.AlertRecord) (string, error)
	ExpireAlerts() (int, error)
	RecentNews(limit int) ([]domain.NewsRecord, error)
	LatestWeather() ([]domain.WeatherRecord, error)
}

// AlertPublisher pushes a freshly created alert to the outside world.
// Nil publisher means publishing is disabled.
type AlertPublisher interface {
	Publish(ctx context.Context, a domain.AlertRecord) error
}

// alertTTL is how long a generated alert stays active by default.
const alertTTL = 6 * time.Hour

// AlertGenerator turns high-severity news and severe weather into alert
// records, deduplicated by source_id, and expires alerts whose end time
// has passed.
type AlertGenerator struct {
	store     AlertStore
	publisher AlertPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewAlertGenerator creates a generator. publisher may be nil.
func NewAlertGenerator(store AlertStore, publisher AlertPublisher, logger *slog.Logger, metrics *observability.Metrics) *AlertGenerator {
	return &AlertGenerator{store: store, publisher: publisher, logger: logger, metrics: metrics}
}

// Run generates new alerts and expires stale ones.
func (g *AlertGenerator) Run(ctx context.Context) error {
	existing, err := g.store.Alerts()
	if err != nil {
		return err
	}
	covered := make(map[string]bool, len(existing))
	for _, a := range existing {
		if a.SourceID != "" {
			covered[a.SourceID] = true
		}
	}

	created := 0

	news, err := g.store.RecentNews(200)
	if err != nil {
		return err
	}
	for _, n := range news {
		if n.Severity != "high" || covered[n.ID] {
			continue
		}
		if err := g.create(ctx, domain.AlertRecord{
			Title:       n.Title,
			Description: n.Impact,
			Category:    n.Category,
			Subcategory: n.Subcategory,
			Location:    n.Location,
			Severity:    n.Severity,
			Source:      n.Source,
			SourceID:    n.ID,
		}); err != nil {
			return err
		}
		covered[n.ID] = true
		created++
	}

	weather, err := g.store.LatestWeather()
	if err != nil {
		return err
	}
	for _, w := range weather {
		for i, wa := range w.Alerts {
			sourceID := weatherAlertID(w, i)
			if covered[sourceID] {
				continue
			}
			severity := wa.Severity
			if severity == "" {
				severity = "medium"
			}
			if err := g.create(ctx, domain.AlertRecord{
				Title:       wa.Event,
				Description: wa.Description,
				Category:    "weather",
				Location:    w.Location,
				Severity:    severity,
				Source:      "weather",
				SourceID:    sourceID,
			}); err != nil {
				return err
			}
			covered[sourceID] = true
			created++
		}
	}

	expired, err := g.store.ExpireAlerts()
	if err != nil {
		return err
	}

	if created > 0 || expired > 0 {
		g.logger.Info("alert generation complete", "created", created, "expired", expired)
	}
	return nil
}

func (g *AlertGenerator) create(ctx context.Context, a domain.AlertRecord) error {
	now := domain.Clock().Now().UTC()
	a.StartTime = now.Format(time.RFC3339)
	a.EndTime = now.Add(alertTTL).Format(time.RFC3339)
	a.IsActive = "TRUE"

	id, err := g.store.InsertAlert(a)
	if err != nil {
		return err
	}
	a.ID = id
	g.metrics.AlertsPublished.Inc()

	if g.publisher != nil {
		if err := g.publisher.Publish(ctx, a); err != nil {
			// Publishing is best effort; the alert is already stored.
			g.metrics.PublishErrors.Inc()
			g.logger.Warn("alert publish failed", "alert", id, "error", err)
		}
	}
	return nil
}

func weatherAlertID(w domain.WeatherRecord, i int) string {
	return "weather_" + w.Location + "_" + w.Timestamp + "_" + strconv.Itoa(i)
}
