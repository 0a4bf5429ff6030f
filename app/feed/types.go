package feed

import "time"

// Source configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool   `yaml:"enabled"`
	RefreshInterval int    `yaml:"refresh_interval"` // seconds
	MaxItems        int    `yaml:"max_items"`        // per ingest run
	Timeout         int    `yaml:"timeout"`          // seconds
	EnrichSummaries bool   `yaml:"enrich_summaries"` // fetch the article page when the feed has no summary
	Timezone        string `yaml:"timezone"`         // zone for feed dates written without one

	Location *time.Location `yaml:"-"` // resolved Timezone, nil when unset
}

// ParseStats counts what the parser saw in one document.
type ParseStats struct {
	Entries      int
	MissingURL   int
	MissingTitle int
}

func (s ParseStats) Dropped() int {
	return s.MissingURL + s.MissingTitle
}
