package search

import (
	"strings"
)

// Mode selects which collaborator answers a search.
type Mode int

const (
	// ModeGenerative invents recipes from the pantry contents.
	ModeGenerative Mode = iota
	// ModeSpecific looks up recipes for a free-text query on the web.
	ModeSpecific
)

func (m Mode) String() string {
	if m == ModeSpecific {
		return "specific"
	}
	return "generative"
}

type Measurement string

const (
	Metric   Measurement = "Metric"
	Standard Measurement = "Standard"
)

// ParseMeasurement accepts "metric", "standard", "imperial" and "us" in any
// case. Anything else is Metric.
func ParseMeasurement(s string) Measurement {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "imperial", "us":
		return Standard
	default:
		return Metric
	}
}

// Request carries the search filters. A non-blank Query selects specific mode.
type Request struct {
	Query              string
	Restrictions       string
	Pantry             []string
	StrictMode         bool
	MaxCookTimeMinutes int
	MaxIngredients     int
	Measurement        Measurement
}

// Mode reports which search mode the request selects.
func (r Request) Mode() Mode {
	if strings.TrimSpace(r.Query) != "" {
		return ModeSpecific
	}
	return ModeGenerative
}

func (r Request) measurement() Measurement {
	if r.Measurement == "" {
		return Metric
	}
	return r.Measurement
}

// pantryNames drops blank names and surrounding spaces.
func (r Request) pantryNames() []string {
	names := make([]string, 0, len(r.Pantry))
	for _, p := range r.Pantry {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
