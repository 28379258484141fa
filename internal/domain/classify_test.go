package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("traffic accident", func(t *testing.T) {
		c := Classify("Fatal accident on the Colombo highway causes major delays")

		assert.Equal(t, "traffic", c.Category)
		assert.Equal(t, "road_accident", c.Subcategory)
		assert.Equal(t, "Colombo", c.Location)
		assert.Equal(t, "high", c.Severity)
		assert.Greater(t, c.Confidence, 0.0)
	})

	t.Run("weather flood", func(t *testing.T) {
		c := Classify("Heavy rain triggers flooding in Ratnapura, residents affected")

		assert.Equal(t, "weather", c.Category)
		assert.Equal(t, "rainfall_alerts", c.Subcategory)
		assert.Equal(t, "Ratnapura", c.Location)
	})

	t.Run("crime arrest", func(t *testing.T) {
		c := Classify("Police arrest three suspects after robbery in Kandy")

		assert.Equal(t, "crime", c.Category)
		assert.Equal(t, "arrests", c.Subcategory)
		assert.Equal(t, "Kandy", c.Location)
	})

	t.Run("no keyword match yields general info", func(t *testing.T) {
		c := Classify("Lorem ipsum dolor sit amet")

		assert.Equal(t, "general", c.Category)
		assert.Equal(t, "general_news", c.Subcategory)
		assert.Equal(t, "Sri Lanka", c.Location)
		assert.Equal(t, "info", c.Severity)
		assert.Equal(t, 0.0, c.Confidence)
	})

	t.Run("category without subcategory table gets general suffix", func(t *testing.T) {
		c := Classify("Minister announces new government policy on tax")

		assert.Equal(t, "government", c.Category)
		assert.Equal(t, "government_general", c.Subcategory)
	})

	t.Run("confidence capped at one", func(t *testing.T) {
		c := Classify("accident traffic road highway bus train delay collision jam")
		assert.Equal(t, 1.0, c.Confidence)
	})
}

func TestDeriveSeverity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"two high keywords", "fatal disaster unfolds", "high"},
		{"one high two medium", "major fire causes damage", "high"},
		{"single high keyword", "urgent appeal issued", "medium"},
		{"two medium keywords", "delay and disruption reported", "medium"},
		{"single medium keyword", "minor damage to property", "low"},
		{"two low keywords", "routine maintenance announcement", "low"},
		{"nothing notable", "sunshine and calm seas", "info"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, deriveSeverity(tc.text))
		})
	}
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"known city verbatim", "flooding reported in galle town", "Galle"},
		{"province name", "power cut across Western Province", "Western Province"},
		{"preposition pattern resolves partial name", "crowd gathered near Nuwara yesterday", "Nuwara Eliya"},
		{"district suffix", "curfew in Jaffna District", "Jaffna"},
		{"unknown location defaults", "something happened somewhere", "Sri Lanka"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractLocation(tc.text))
		})
	}
}
