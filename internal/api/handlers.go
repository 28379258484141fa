package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harithj/lanka-sitrep/internal/config"
	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/store"
)

// Handler serves dashboard queries from the CSV store.
type Handler struct {
	store     *store.Store
	districts []config.District
	logger    *slog.Logger
	startedAt time.Time
}

// NewHandler creates a Handler over the store.
func NewHandler(s *store.Store, districts []config.District, logger *slog.Logger) *Handler {
	return &Handler{
		store:     s,
		districts: districts,
		logger:    logger,
		startedAt: domain.Clock().Now(),
	}
}

// GetNews returns recent news, newest first. Supported filters:
// category, severity, location, hours, limit.
func (h *Handler) GetNews(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	news, err := h.store.RecentNews(500)
	if err != nil {
		h.serverError(c, "get news", err)
		return
	}

	category := c.Query("category")
	severity := c.Query("severity")
	location := c.Query("location")
	cutoff, hasCutoff := hoursCutoff(c)

	out := make([]domain.NewsRecord, 0, limit)
	for _, n := range news {
		if category != "" && !strings.EqualFold(n.Category, category) {
			continue
		}
		if severity != "" && !strings.EqualFold(n.Severity, severity) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(n.Location), strings.ToLower(location)) {
			continue
		}
		if hasCutoff {
			ts, ok := parseTime(n.ProcessedAt)
			if !ok || ts.Before(cutoff) {
				continue
			}
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{"count": len(out), "news": out})
}

// GetAlerts returns active alerts. Supported filters: category,
// severity, location, source, hours.
func (h *Handler) GetAlerts(c *gin.Context) {
	alerts, err := h.store.ActiveAlerts()
	if err != nil {
		h.serverError(c, "get alerts", err)
		return
	}

	category := c.Query("category")
	severity := c.Query("severity")
	location := c.Query("location")
	source := c.Query("source")
	cutoff, hasCutoff := hoursCutoff(c)

	out := make([]domain.AlertRecord, 0, len(alerts))
	for _, a := range alerts {
		if category != "" && !strings.EqualFold(a.Category, category) {
			continue
		}
		if severity != "" && !strings.EqualFold(a.Severity, severity) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(a.Location), strings.ToLower(location)) {
			continue
		}
		if source != "" && !strings.EqualFold(a.Source, source) {
			continue
		}
		if hasCutoff {
			ts, ok := parseTime(a.CreatedAt)
			if !ok || ts.Before(cutoff) {
				continue
			}
		}
		out = append(out, a)
	}

	c.JSON(http.StatusOK, gin.H{"count": len(out), "alerts": out})
}

// GetWeather returns the latest snapshot per location, or a single
// location with ?location=.
func (h *Handler) GetWeather(c *gin.Context) {
	latest, err := h.store.LatestWeather()
	if err != nil {
		h.serverError(c, "get weather", err)
		return
	}

	if location := c.Query("location"); location != "" {
		for _, w := range latest {
			if strings.EqualFold(w.Location, location) {
				c.JSON(http.StatusOK, w)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(latest), "weather": latest})
}

// GetWeatherDistricts returns the latest snapshot for each configured
// district, with nulls for districts not yet collected.
func (h *Handler) GetWeatherDistricts(c *gin.Context) {
	latest, err := h.store.LatestWeather()
	if err != nil {
		h.serverError(c, "get weather", err)
		return
	}

	byLocation := make(map[string]domain.WeatherRecord, len(latest))
	for _, w := range latest {
		byLocation[w.Location] = w
	}

	out := make(map[string]any, len(h.districts))
	for _, d := range h.districts {
		if w, ok := byLocation[d.Name]; ok {
			out[d.Name] = w
		} else {
			out[d.Name] = nil
		}
	}
	c.JSON(http.StatusOK, gin.H{"districts": out})
}

// GetFuelLatest returns the newest fuel snapshot.
func (h *Handler) GetFuelLatest(c *gin.Context) {
	latest, ok, err := h.store.LatestFuelPrice()
	if err != nil {
		h.serverError(c, "get fuel", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no fuel prices recorded yet"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

// GetFuelHistory returns fuel snapshots, newest first. Supported
// filters: limit, start (YYYY-MM-DD lower bound on date_str).
func (h *Handler) GetFuelHistory(c *gin.Context) {
	limit := intQuery(c, "limit", 30)
	history, err := h.store.FuelHistory(limit)
	if err != nil {
		h.serverError(c, "get fuel history", err)
		return
	}

	if start := c.Query("start"); start != "" {
		filtered := history[:0]
		for _, rec := range history {
			if rec.DateStr >= start {
				filtered = append(filtered, rec)
			}
		}
		history = filtered
	}

	c.JSON(http.StatusOK, gin.H{"count": len(history), "history": history})
}

// GetFuelStats returns per-column price statistics.
func (h *Handler) GetFuelStats(c *gin.Context) {
	stats, err := h.store.FuelStats()
	if err != nil {
		h.serverError(c, "get fuel stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetStats returns record counts and uptime.
func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{
		"uptime_seconds": int(domain.Clock().Since(h.startedAt).Seconds()),
		"timestamp":      domain.Clock().Now().UTC().Format(time.RFC3339),
	}

	if news, err := h.store.News(); err == nil {
		stats["news"] = len(news)
	}
	if alerts, err := h.store.ActiveAlerts(); err == nil {
		stats["active_alerts"] = len(alerts)
	}
	if weather, err := h.store.Weather(); err == nil {
		stats["weather"] = len(weather)
	}
	if history, err := h.store.FuelHistory(10000); err == nil {
		stats["fuel_snapshots"] = len(history)
	}

	c.JSON(http.StatusOK, stats)
}

// exportFiles maps export kinds to the underlying feed files.
var exportFiles = map[string]string{
	"news":    store.NewsFile,
	"alerts":  store.AlertsFile,
	"weather": store.WeatherFile,
	"fuel":    store.FuelFile,
}

// Export downloads a feed as CSV (default) or XLSX.
func (h *Handler) Export(c *gin.Context) {
	kind := c.Param("kind")
	file, ok := exportFiles[kind]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown export kind"})
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := h.store.RawFile(file)
		if err != nil {
			h.serverError(c, "export csv", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+file+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	case "xlsx":
		data, err := h.store.ExportXLSX(kind)
		if err != nil {
			h.serverError(c, "export xlsx", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+kind+`.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
	}
}

// GetDataFile serves a raw feed file. Anything unreadable (unknown
// name, missing file) comes back as the literal body "empty" with
// status 200, which feed consumers treat as a zero-record document.
func (h *Handler) GetDataFile(c *gin.Context) {
	name := c.Param("file")
	data, err := h.store.RawFile(name)
	if err != nil {
		h.logger.Debug("data file unavailable", "file", name, "error", err)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte("empty"))
		return
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *Handler) serverError(c *gin.Context, op string, err error) {
	h.logger.Error("request failed", "operation", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if s := c.Query(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// hoursCutoff reads ?hours= and converts it to an absolute cutoff.
func hoursCutoff(c *gin.Context) (time.Time, bool) {
	s := c.Query("hours")
	if s == "" {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return time.Time{}, false
	}
	return domain.Clock().Now().Add(-time.Duration(n) * time.Hour), true
}

var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
