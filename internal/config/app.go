// Package config loads the application configuration file: the feed list,
// the rule scorer tables and the scoring criteria. Operational tuning
// (schedules, thresholds, credentials) comes from the environment instead.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"newswatch/internal/domain/entity"
	"newswatch/internal/infra/scorer"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "config.yaml"

// FeedConfig is one RSS/Atom source.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// RulesConfig overrides the built-in rule scorer tables. Empty fields keep
// the defaults, so a config file can replace just the keyword weights.
type RulesConfig struct {
	KeywordWeights     map[string]float64 `yaml:"keyword_weights"`
	InternationalBonus float64            `yaml:"international_bonus"`
	InternationalWords []string           `yaml:"international_words"`
	HomeRegionBonus    float64            `yaml:"home_region_bonus"`
	HomeRegionWords    []string           `yaml:"home_region_words"`
	UrgentBonus        float64            `yaml:"urgent_bonus"`
	UrgentWords        []string           `yaml:"urgent_words"`
	DevelopingBonus    float64            `yaml:"developing_bonus"`
	DevelopingWords    []string           `yaml:"developing_words"`
}

// AppConfig is the parsed configuration file.
type AppConfig struct {
	Feeds    []FeedConfig `yaml:"feeds"`
	Rules    *RulesConfig `yaml:"rules"`
	Criteria string       `yaml:"criteria"`
}

// Path returns the configuration file path from CONFIG_PATH, or the default.
func Path() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return DefaultPath
}

// Load reads and validates the configuration file. A missing file, broken
// yaml or empty feed list is a configuration error; the worker must not
// start without feeds to scan.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config file %s: %v", entity.ErrConfiguration, path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse config file %s: %v", entity.ErrConfiguration, path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("%w: no feeds configured", entity.ErrConfiguration)
	}

	for i, feed := range c.Feeds {
		if feed.Name == "" {
			return fmt.Errorf("%w: feed %d has no name", entity.ErrConfiguration, i)
		}
		if err := entity.ValidateFeedURL(feed.URL); err != nil {
			return fmt.Errorf("%w: feed %q: %v", entity.ErrConfiguration, feed.Name, err)
		}
	}
	return nil
}

// ScorerRules merges the file overrides onto the built-in rule tables.
func (c *AppConfig) ScorerRules() scorer.RulesConfig {
	rules := scorer.DefaultRulesConfig()
	if c.Rules == nil {
		return rules
	}

	if len(c.Rules.KeywordWeights) > 0 {
		rules.KeywordWeights = c.Rules.KeywordWeights
	}
	if c.Rules.InternationalBonus > 0 {
		rules.InternationalBonus = c.Rules.InternationalBonus
	}
	if len(c.Rules.InternationalWords) > 0 {
		rules.InternationalWords = c.Rules.InternationalWords
	}
	if c.Rules.HomeRegionBonus > 0 {
		rules.HomeRegionBonus = c.Rules.HomeRegionBonus
	}
	if len(c.Rules.HomeRegionWords) > 0 {
		rules.HomeRegionWords = c.Rules.HomeRegionWords
	}
	if c.Rules.UrgentBonus > 0 {
		rules.UrgentBonus = c.Rules.UrgentBonus
	}
	if len(c.Rules.UrgentWords) > 0 {
		rules.UrgentWords = c.Rules.UrgentWords
	}
	if c.Rules.DevelopingBonus > 0 {
		rules.DevelopingBonus = c.Rules.DevelopingBonus
	}
	if len(c.Rules.DevelopingWords) > 0 {
		rules.DevelopingWords = c.Rules.DevelopingWords
	}
	return rules
}
