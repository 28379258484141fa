package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/harithj/lanka-sitrep/internal/config"
	"github.com/harithj/lanka-sitrep/internal/domain"
	"github.com/harithj/lanka-sitrep/internal/observability"
)

// NewsStore is the slice of the store the news collector needs.
type NewsStore interface {
	InsertNews(n domain.NewsRecord) (string, error)
	RecentNews(limit int) ([]domain.NewsRecord, error)
}

// NewsCollector scrapes headlines from the configured news sites,
// classifies them, and stores anything not already seen.
type NewsCollector struct {
	sources []config.NewsSource
	store   NewsStore
	client  *http.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewNewsCollector creates a collector over the given sources.
func NewNewsCollector(sources []config.NewsSource, store NewsStore, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *NewsCollector {
	return &NewsCollector{
		sources: sources,
		store:   store,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// Run scrapes every source once. A source that fails to fetch is logged
// and skipped; the run only errors when no source could be reached.
func (c *NewsCollector) Run(ctx context.Context) error {
	seen, err := c.seenTitles()
	if err != nil {
		return err
	}

	fetched := 0
	stored := 0
	for _, src := range c.sources {
		headlines, err := c.scrape(ctx, src)
		if err != nil {
			c.logger.Warn("news source unavailable", "source", src.Name, "error", err)
			continue
		}
		fetched++

		for _, h := range headlines {
			if seen[normalizeTitle(h.title)] {
				continue
			}
			seen[normalizeTitle(h.title)] = true

			verdict := domain.Classify(h.title + " " + h.summary)
			rec := domain.NewsRecord{
				Title:       h.title,
				Summary:     h.summary,
				Link:        h.link,
				Source:      src.Name,
				Category:    verdict.Category,
				Subcategory: verdict.Subcategory,
				Location:    verdict.Location,
				Impact:      verdict.Impact,
				Severity:    verdict.Severity,
				Keywords:    []string{},
				Date:        domain.Clock().Now().UTC().Format(time.RFC3339),
			}
			if _, err := c.store.InsertNews(rec); err != nil {
				return err
			}
			stored++
			c.metrics.RecordsParsed.WithLabelValues("news").Inc()
		}
	}

	if fetched == 0 && len(c.sources) > 0 {
		return fmt.Errorf("all %d news sources unavailable", len(c.sources))
	}
	c.logger.Info("news collection complete", "sources", fetched, "new_items", stored)
	return nil
}

type headline struct {
	title   string
	summary string
	link    string
}

func (c *NewsCollector) scrape(ctx context.Context, src config.NewsSource) ([]headline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "lanka-sitrep/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, src.URL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var headlines []headline
	doc.Find(src.Selector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find("h1,h2,h3,a").First().Text())
		if title == "" {
			title = strings.TrimSpace(sel.Text())
		}
		if title == "" {
			return
		}

		h := headline{
			title:   title,
			summary: strings.TrimSpace(sel.Find("p").First().Text()),
		}
		if href, ok := sel.Find("a").First().Attr("href"); ok {
			h.link = absoluteURL(src.URL, href)
		}
		headlines = append(headlines, h)
	})
	return headlines, nil
}

// seenTitles indexes recently stored titles for dedupe across runs.
func (c *NewsCollector) seenTitles() (map[string]bool, error) {
	recent, err := c.store.RecentNews(500)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(recent))
	for _, n := range recent {
		seen[normalizeTitle(n.Title)] = true
	}
	return seen, nil
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base = strings.TrimSuffix(base, "/")
	if strings.HasPrefix(href, "/") {
		// Keep scheme and host only.
		if i := strings.Index(base, "://"); i >= 0 {
			if j := strings.Index(base[i+3:], "/"); j >= 0 {
				base = base[:i+3+j]
			}
		}
	} else {
		href = "/" + href
	}
	return base + href
}
