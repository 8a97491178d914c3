package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"presidency_scraper/internal/filter"
)

// BaseURL is the only origin this scraper knows how to walk.
const BaseURL = "https://www.presidency.ucsb.edu"

type ScraperConfig struct {
	InitialURL string `yaml:"initial_url"`
	DelayMS    int    `yaml:"delay_ms"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Limit      int    `yaml:"limit"`
	UserAgent  string `yaml:"user_agent"`
	OutputDir  string `yaml:"output_dir"`
}

type FilterConfig struct {
	Include map[string][]string `yaml:"include"`
	Exclude map[string][]string `yaml:"exclude"`
}

type DBConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Connection string `yaml:"connection"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type PopulationConfig struct {
	CSV string `yaml:"csv"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Scraper    ScraperConfig    `yaml:"scraper"`
	Filter     FilterConfig     `yaml:"filter"`
	DB         DBConfig         `yaml:"db"`
	Population PopulationConfig `yaml:"population"`
	Log        LogConfig        `yaml:"log"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scraper.DelayMS == 0 {
		c.Scraper.DelayMS = 1000
	}
	if c.Scraper.TimeoutSec == 0 {
		c.Scraper.TimeoutSec = 30
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = "PresidencyScraper/1.0 (research corpus builder)"
	}
	if c.Scraper.OutputDir == "" {
		c.Scraper.OutputDir = "PresidencyScraperResult"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects configurations that would start a crawl against the wrong
// origin or with filter rules naming fields that are never extracted.
// Reachability of the seed URL is checked later, once a client exists.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Scraper.InitialURL, BaseURL) {
		return fmt.Errorf("initial_url does not match the base url %s", BaseURL)
	}
	if c.Scraper.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", c.Scraper.Limit)
	}
	if _, err := filter.Parse(c.Filter.Include, c.Filter.Exclude); err != nil {
		return err
	}
	return nil
}

// Rules parses the configured filter dictionaries. Only meaningful after
// Validate has passed.
func (c *Config) Rules() (filter.Rules, error) {
	return filter.Parse(c.Filter.Include, c.Filter.Exclude)
}
