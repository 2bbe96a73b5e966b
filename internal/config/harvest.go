package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/rheyna/duncord/pkg/ranking/handler"
	"github.com/rheyna/duncord/pkg/ranking/service"
	"github.com/rheyna/duncord/pkg/ranking/shared"
)

// RetryConfig contains the page fetch retry knobs.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" toml:"max_attempts" env:"HARVEST_MAX_ATTEMPTS"`
	Backoff     time.Duration `yaml:"backoff" toml:"backoff" env:"HARVEST_BACKOFF"`
}

// GapEntry is one historical outage window of the source site's main
// character ranking, inclusive YYYYMM bounds with From the newer month.
type GapEntry struct {
	From int `yaml:"from" toml:"from"`
	To   int `yaml:"to" toml:"to"`
}

// LinkageSearchConfig bounds the account linkage month search.
type LinkageSearchConfig struct {
	RecentMonths int        `yaml:"recent_months" toml:"recent_months" env:"HARVEST_LINKAGE_RECENT_MONTHS"`
	SearchBudget int        `yaml:"search_budget" toml:"search_budget" env:"HARVEST_LINKAGE_SEARCH_BUDGET"`
	GapRanges    []GapEntry `yaml:"gap_ranges" toml:"gap_ranges"`
}

// HarvestConfig is the complete harvest configuration loaded from
// config/harvest.yaml, config/harvest.toml, environment variables, or
// built-in defaults, in that order of preference.
type HarvestConfig struct {
	Categories []int               `yaml:"categories" toml:"categories" env:"HARVEST_CATEGORIES"`
	Cooldown   time.Duration       `yaml:"cooldown" toml:"cooldown" env:"HARVEST_COOLDOWN"`
	Retry      RetryConfig         `yaml:"retry" toml:"retry"`
	Linkage    LinkageSearchConfig `yaml:"linkage" toml:"linkage"`
}

// NewHarvestConfig loads and validates the harvest configuration.
func NewHarvestConfig() (*HarvestConfig, error) {
	cfg := &HarvestConfig{}

	if err := loadYAMLHarvest(cfg); err != nil {
		if err := loadTOMLHarvest(cfg); err != nil {
			loadEnvHarvest(cfg)
		}
	}
	setHarvestDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("harvest configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadYAMLHarvest(cfg *HarvestConfig) error {
	yamlPath := filepath.Join("config", "harvest.yaml")
	if _, err := os.Stat(yamlPath); os.IsNotExist(err) {
		return fmt.Errorf("YAML config file not found: %s", yamlPath)
	}

	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("failed to read YAML config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

func loadTOMLHarvest(cfg *HarvestConfig) error {
	tomlPath := filepath.Join("config", "harvest.toml")
	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		return fmt.Errorf("TOML config file not found: %s", tomlPath)
	}

	if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return nil
}

func loadEnvHarvest(cfg *HarvestConfig) {
	cfg.Categories = getEnvIntSlice("HARVEST_CATEGORIES", nil)
	cfg.Cooldown = getEnvDuration("HARVEST_COOLDOWN", 0)
	cfg.Retry.MaxAttempts = getEnvInt("HARVEST_MAX_ATTEMPTS", 0)
	cfg.Retry.Backoff = getEnvDuration("HARVEST_BACKOFF", 0)
	cfg.Linkage.RecentMonths = getEnvInt("HARVEST_LINKAGE_RECENT_MONTHS", 0)
	cfg.Linkage.SearchBudget = getEnvInt("HARVEST_LINKAGE_SEARCH_BUDGET", 0)
}

// setHarvestDefaults fills in whatever a partial config file or environment
// left unset.
func setHarvestDefaults(cfg *HarvestConfig) {
	if len(cfg.Categories) == 0 {
		cfg.Categories = []int{1}
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 50 * time.Millisecond
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 15
	}
	if cfg.Retry.Backoff <= 0 {
		cfg.Retry.Backoff = 2 * time.Second
	}
	if cfg.Linkage.RecentMonths <= 0 {
		cfg.Linkage.RecentMonths = 12
	}
	if cfg.Linkage.SearchBudget <= 0 {
		cfg.Linkage.SearchBudget = 24
	}
	if len(cfg.Linkage.GapRanges) == 0 {
		cfg.Linkage.GapRanges = []GapEntry{
			{From: 201703, To: 201611},
			{From: 201301, To: 201203},
		}
	}
}

// Validate checks the configuration values.
func (cfg *HarvestConfig) Validate() error {
	for _, id := range cfg.Categories {
		if id <= 0 {
			return fmt.Errorf("category id must be positive, got %d", id)
		}
	}
	if cfg.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry max_attempts must be positive, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.Backoff <= 0 {
		return fmt.Errorf("retry backoff must be positive, got %v", cfg.Retry.Backoff)
	}
	if cfg.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %v", cfg.Cooldown)
	}
	for _, g := range cfg.Linkage.GapRanges {
		if g.From < g.To {
			return fmt.Errorf("gap range from must not precede to, got %d..%d", g.From, g.To)
		}
		if g.To < shared.ServiceLaunchMonth {
			return fmt.Errorf("gap range reaches before service launch: %d", g.To)
		}
	}
	return nil
}

// ClientConfig maps the harvest settings onto the ranking client.
func (cfg *HarvestConfig) ClientConfig(baseURL string) handler.ClientConfig {
	return handler.ClientConfig{
		BaseURL:  baseURL,
		Cooldown: cfg.Cooldown,
		Retry: handler.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff:     cfg.Retry.Backoff,
		},
	}
}

// LinkageConfig maps the linkage search settings onto the reconciler.
func (cfg *HarvestConfig) LinkageConfig() service.LinkageConfig {
	out := service.LinkageConfig{
		RecentMonths: cfg.Linkage.RecentMonths,
		SearchBudget: cfg.Linkage.SearchBudget,
	}
	for _, g := range cfg.Linkage.GapRanges {
		out.GapRanges = append(out.GapRanges, service.GapRange{From: g.From, To: g.To})
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvIntSlice(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	return out
}
