package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// District is a monitored area with coordinates for weather lookups.
type District struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// NewsSource is a scrapable news site.
type NewsSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`
}

// Sources describes where the collectors pull data from.
type Sources struct {
	Districts []District   `yaml:"districts"`
	News      []NewsSource `yaml:"news"`
	FuelURL   string       `yaml:"fuel_url"`
}

// LoadSources reads and validates the YAML sources file. A missing file
// yields the built-in defaults so the service can start without one.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSources(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", path, err)
	}
	return &s, nil
}

func (s *Sources) validate() error {
	for i, d := range s.Districts {
		if d.Name == "" {
			return fmt.Errorf("district %d: name is required", i)
		}
		if d.Lat < -90 || d.Lat > 90 || d.Lon < -180 || d.Lon > 180 {
			return fmt.Errorf("district %q: coordinates out of range", d.Name)
		}
	}
	for i, n := range s.News {
		if n.Name == "" {
			return fmt.Errorf("news source %d: name is required", i)
		}
		if n.URL == "" {
			return fmt.Errorf("news source %q: url is required", n.Name)
		}
	}
	return nil
}

// DefaultSources covers the main population centers and national news
// outlets when no sources file is provided.
func DefaultSources() *Sources {
	return &Sources{
		Districts: []District{
			{Name: "Colombo", Lat: 6.9271, Lon: 79.8612},
			{Name: "Kandy", Lat: 7.2906, Lon: 80.6337},
			{Name: "Galle", Lat: 6.0535, Lon: 80.2210},
			{Name: "Jaffna", Lat: 9.6615, Lon: 80.0255},
			{Name: "Trincomalee", Lat: 8.5874, Lon: 81.2152},
			{Name: "Anuradhapura", Lat: 8.3114, Lon: 80.4037},
			{Name: "Ratnapura", Lat: 6.7056, Lon: 80.3847},
			{Name: "Batticaloa", Lat: 7.7310, Lon: 81.6747},
		},
		News: []NewsSource{
			{Name: "Ada Derana", URL: "https://www.adaderana.lk/hot-news/", Selector: "div.news-story"},
			{Name: "Daily Mirror", URL: "https://www.dailymirror.lk/breaking-news/108", Selector: "div.col-md-12 h3"},
			{Name: "News First", URL: "https://www.newsfirst.lk/latest-news/", Selector: "article h2"},
		},
		FuelURL: "https://ceypetco.gov.lk/marketing-sales/",
	}
}
