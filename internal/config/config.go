package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobharvest pipeline.
type Config struct {
	Query      string
	MaxResults int // per-source cap, 0 for unlimited
	Country    string
	DataDir    string
	Fetch      FetchConfig
	Filters    FilterConfig
	Sources    SourcesConfig
}

// FetchConfig controls HTTP behavior shared by all sources.
type FetchConfig struct {
	Timeout           time.Duration
	RequestsPerSecond float64 // per-host pacing
	Burst             int
	MaxRetries        int
	RetryBaseDelay    time.Duration
}

// FilterConfig holds the keyword and place-name token lists consumed by the
// classifier.
type FilterConfig struct {
	Keywords  []string `yaml:"keywords"`
	Locations []string `yaml:"locations"`
}

// SourcesConfig lists every board the pipeline aggregates.
type SourcesConfig struct {
	Greenhouse      []BoardConfig        `yaml:"greenhouse"`
	SmartRecruiters []BoardConfig        `yaml:"smartrecruiters"`
	Amazon          AmazonConfig         `yaml:"amazon"`
	SuccessFactors  []SuccessFactorsSite `yaml:"successfactors"`
}

// BoardConfig describes one company board on a multi-tenant platform.
type BoardConfig struct {
	Name    string `yaml:"name"`
	Slug    string `yaml:"slug"`
	Domain  string `yaml:"domain"`
	Enabled bool   `yaml:"enabled"`
}

// AmazonConfig enables the Amazon search API source.
type AmazonConfig struct {
	Enabled     bool   `yaml:"enabled"`
	CountryCode string `yaml:"country_code"` // ISO alpha-3, e.g. "DEU"
}

// SuccessFactorsSite describes one SuccessFactors-hosted career site.
type SuccessFactorsSite struct {
	Name        string `yaml:"name"`
	BaseURL     string `yaml:"base_url"`
	CountryCode string `yaml:"country_code"` // ISO alpha-2, e.g. "DE"
	Enabled     bool   `yaml:"enabled"`
}

// Built-in defaults, applied when the config omits the filter lists.
var (
	defaultKeywords = []string{
		"machine learning", "data scien", "data engineer", "data analyst",
		"ml ", " ml", "ai ", " ai", "deep learning", "nlp",
		"computer vision", "analytics", "neural", "llm",
		"research scientist", "applied scientist",
	}
	defaultLocations = []string{
		"germany", "berlin", "munich", "hamburg", "frankfurt",
		"emea", "europe", "remote",
	}
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	Query      string         `yaml:"query"`
	MaxResults int            `yaml:"max_results"`
	Country    string         `yaml:"country"`
	DataDir    string         `yaml:"data_dir"`
	Fetch      rawFetchConfig `yaml:"fetch"`
	Filters    FilterConfig   `yaml:"filters"`
	Sources    SourcesConfig  `yaml:"sources"`
}

type rawFetchConfig struct {
	Timeout           string  `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxRetries        int     `yaml:"max_retries"`
	RetryBaseDelay    string  `yaml:"retry_base_delay"`
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout := 30 * time.Second
	if raw.Fetch.Timeout != "" {
		timeout, err = time.ParseDuration(raw.Fetch.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.timeout %q: %w", raw.Fetch.Timeout, err)
		}
	}

	retryDelay := 5 * time.Second
	if raw.Fetch.RetryBaseDelay != "" {
		retryDelay, err = time.ParseDuration(raw.Fetch.RetryBaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.retry_base_delay %q: %w", raw.Fetch.RetryBaseDelay, err)
		}
	}

	rps := raw.Fetch.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := raw.Fetch.Burst
	if burst <= 0 {
		burst = 1
	}
	maxRetries := raw.Fetch.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = 2
	}

	cfg := &Config{
		Query:      raw.Query,
		MaxResults: raw.MaxResults,
		Country:    raw.Country,
		DataDir:    raw.DataDir,
		Fetch: FetchConfig{
			Timeout:           timeout,
			RequestsPerSecond: rps,
			Burst:             burst,
			MaxRetries:        maxRetries,
			RetryBaseDelay:    retryDelay,
		},
		Filters: raw.Filters,
		Sources: raw.Sources,
	}

	if cfg.Query == "" {
		cfg.Query = "machine learning"
	}
	if cfg.Country == "" {
		cfg.Country = "Germany"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if len(cfg.Filters.Keywords) == 0 {
		cfg.Filters.Keywords = defaultKeywords
	}
	if len(cfg.Filters.Locations) == 0 {
		cfg.Filters.Locations = defaultLocations
	}
	if cfg.Sources.Amazon.Enabled && cfg.Sources.Amazon.CountryCode == "" {
		cfg.Sources.Amazon.CountryCode = "DEU"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MaxResults < 0 {
		return fmt.Errorf("max_results must not be negative, got %d", cfg.MaxResults)
	}

	enabled := cfg.EnabledSourceCount()
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	for _, b := range cfg.Sources.Greenhouse {
		if b.Enabled && b.Slug == "" {
			return fmt.Errorf("greenhouse board %q needs a slug", b.Name)
		}
	}
	for _, b := range cfg.Sources.SmartRecruiters {
		if b.Enabled && b.Slug == "" {
			return fmt.Errorf("smartrecruiters board %q needs a slug", b.Name)
		}
	}
	for _, s := range cfg.Sources.SuccessFactors {
		if s.Enabled && s.BaseURL == "" {
			return fmt.Errorf("successfactors site %q needs a base_url", s.Name)
		}
	}

	return nil
}

// EnabledSourceCount returns the number of sources the pipeline will poll.
func (c *Config) EnabledSourceCount() int {
	n := 0
	for _, b := range c.Sources.Greenhouse {
		if b.Enabled {
			n++
		}
	}
	for _, b := range c.Sources.SmartRecruiters {
		if b.Enabled {
			n++
		}
	}
	if c.Sources.Amazon.Enabled {
		n++
	}
	for _, s := range c.Sources.SuccessFactors {
		if s.Enabled {
			n++
		}
	}
	return n
}
