// Package config maps location names to their configured harvest
// sources. The mapping is a YAML file so new towns can be onboarded
// without a code change.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChurchSource describes one church site: its events page, optional
// declared selectors, and an optional campus filter for multi-site
// churches whose markup tags events with location ids.
type ChurchSource struct {
	Name      string            `yaml:"name"`
	URL       string            `yaml:"url"`
	Container string            `yaml:"container,omitempty"`
	Selectors map[string]string `yaml:"selectors,omitempty"`
	// CampusID keeps only events tagged with this location id; "0" in
	// the markup means all campuses and always passes.
	CampusID string `yaml:"campus_id,omitempty"`
	// Rendered marks sites whose event markup only exists after
	// client-side rendering.
	Rendered bool `yaml:"rendered,omitempty"`
	// DetailPages enables a per-event detail fetch for descriptions.
	DetailPages bool `yaml:"detail_pages,omitempty"`
}

// SchoolSource describes a school district's calendar pages grouped by
// tier, plus a domain→name map for schools whose pages carry unhelpful
// titles.
type SchoolSource struct {
	// Tiers maps "elementary"/"middle"/"high" to calendar URLs.
	Tiers       map[string][]string `yaml:"tiers"`
	DomainNames map[string]string   `yaml:"domain_names,omitempty"`
}

// ListingSource describes a regional listing site's JSON API.
type ListingSource struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	TownID string `yaml:"town_id,omitempty"`
}

// Location groups every configured source for one place.
type Location struct {
	Churches []ChurchSource `yaml:"churches,omitempty"`
	Schools  *SchoolSource  `yaml:"schools,omitempty"`
	Listing  *ListingSource `yaml:"listing,omitempty"`
}

// Defaults are harvest-wide settings.
type Defaults struct {
	DaysAhead  int    `yaml:"days_ahead"`
	Timezone   string `yaml:"timezone"`
	UserAgent  string `yaml:"user_agent,omitempty"`
	MinDelayMS int    `yaml:"min_delay_ms"`
	Workers    int    `yaml:"workers"`
}

// Config is the top-level file structure.
type Config struct {
	Defaults  Defaults            `yaml:"defaults"`
	Locations map[string]Location `yaml:"locations"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Normalize fills zero values with defaults so a minimal file still
// behaves sensibly.
func (c *Config) Normalize() {
	if c.Defaults.DaysAhead <= 0 {
		c.Defaults.DaysAhead = 14
	}
	if c.Defaults.Timezone == "" {
		c.Defaults.Timezone = "America/New_York"
	}
	if c.Defaults.MinDelayMS <= 0 {
		c.Defaults.MinDelayMS = 500
	}
	if c.Defaults.Workers <= 0 {
		c.Defaults.Workers = 10
	}
	if c.Locations == nil {
		c.Locations = map[string]Location{}
	}
}

var statePartRe = regexp.MustCompile(`,\s*[A-Za-z]{2}$`)

// normalizeLocation reduces free-text place names to a lookup key:
// "Snellville, GA" and "snellville" both resolve to "snellville".
func normalizeLocation(name string) string {
	name = strings.TrimSpace(name)
	name = statePartRe.ReplaceAllString(name, "")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Lookup resolves a free-text location name. ok=false means the place
// is not configured, which callers treat as "nothing to harvest here"
// rather than an error.
func (c *Config) Lookup(name string) (Location, bool) {
	want := normalizeLocation(name)
	for key, loc := range c.Locations {
		if normalizeLocation(key) == want {
			return loc, true
		}
	}
	return Location{}, false
}

// LocationNames lists the configured locations for help output.
func (c *Config) LocationNames() []string {
	names := make([]string, 0, len(c.Locations))
	for k := range c.Locations {
		names = append(names, k)
	}
	return names
}
