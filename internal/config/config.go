package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"profileimport/internal/model"

	"gopkg.in/yaml.v2"
)

// Duration wraps time.Duration so it can be read from YAML strings like "15s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DatabaseConfig holds the database connection information.
type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// AdminConfig holds configuration for the admin endpoints.
type AdminConfig struct {
	Password string `yaml:"password"`
}

// ProviderConfig describes one external profile provider.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	// Mode is "sync" for single request/response providers and "async" for
	// trigger-then-poll providers.
	Mode string `yaml:"mode"`
	// Dataset identifies the scraping dataset for async providers.
	Dataset string `yaml:"dataset"`
}

// PollConfig bounds the job poller for async providers.
type PollConfig struct {
	Interval    Duration `yaml:"interval"`
	MaxDuration Duration `yaml:"max_duration"`
	MaxAttempts int      `yaml:"max_attempts"`
}

// ImporterConfig holds the acquisition pipeline settings.
type ImporterConfig struct {
	// Providers are tried in the order listed here.
	Providers        []ProviderConfig `yaml:"providers"`
	RequestTimeout   Duration         `yaml:"request_timeout"`
	Cooldown         Duration         `yaml:"cooldown"`
	OverallDeadline  Duration         `yaml:"overall_deadline"`
	SessionRetention Duration         `yaml:"session_retention"`
	Poll             PollConfig       `yaml:"poll"`
}

// QuotaConfig maps subscription tiers to daily import limits. A limit of -1
// means unlimited.
type QuotaConfig struct {
	Tiers map[string]int `yaml:"tiers"`
}

// EnrichmentConfig holds settings for the text-generation collaborator.
type EnrichmentConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

// SchedulerConfig holds cron schedules for the maintenance jobs.
type SchedulerConfig struct {
	UsageResetSchedule   string `yaml:"usage_reset_schedule"`
	SessionPurgeSchedule string `yaml:"session_purge_schedule"`
}

// Config holds the configuration for the import service.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Admin      AdminConfig      `yaml:"admin"`
	Importer   ImporterConfig   `yaml:"importer"`
	Quota      QuotaConfig      `yaml:"quota"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Port       int              `yaml:"port"`
	Debug      bool             `yaml:"debug"`
}

// LoadConfig reads and parses the configuration file. It returns the config
// and a potential warning message describing defaults that were filled in.
var LoadConfig = func(path string) (*Config, string, error) {
	var config Config
	var warnings []string

	data, err := os.ReadFile(path)
	if err == nil {
		// File exists, so unmarshal it
		err = yaml.Unmarshal(data, &config)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		// An error other than "not found" occurred
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}
	// If file does not exist, we continue with an empty config and rely on
	// environment variables and defaults.

	// Set default values
	if len(config.Importer.Providers) == 0 {
		config.Importer.Providers = []ProviderConfig{
			{Name: "scrapin", BaseURL: "https://api.scrapin.io", Mode: "sync"},
			{Name: "brightdata", BaseURL: "https://api.brightdata.com", Mode: "async", Dataset: "gd_l1viktl72bvl7bjuj0"},
		}
		warnings = append(warnings, "importer.providers not set, using default provider list")
	}
	if config.Importer.RequestTimeout == 0 {
		config.Importer.RequestTimeout = Duration(25 * time.Second)
	}
	if config.Importer.Cooldown == 0 {
		config.Importer.Cooldown = Duration(time.Hour)
	}
	if config.Importer.OverallDeadline == 0 {
		config.Importer.OverallDeadline = Duration(10 * time.Minute)
	}
	if config.Importer.SessionRetention == 0 {
		config.Importer.SessionRetention = Duration(24 * time.Hour)
	}
	if config.Importer.Poll.Interval == 0 {
		config.Importer.Poll.Interval = Duration(15 * time.Second)
	}
	if config.Importer.Poll.MaxDuration == 0 {
		config.Importer.Poll.MaxDuration = Duration(120 * time.Second)
	}
	if config.Importer.Poll.MaxAttempts == 0 {
		config.Importer.Poll.MaxAttempts = 40
	}
	if len(config.Quota.Tiers) == 0 {
		config.Quota.Tiers = model.DefaultQuotas()
		warnings = append(warnings, "quota.tiers not set, using default tier limits")
	}
	if config.Enrichment.Model == "" {
		config.Enrichment.Model = "gemini-1.5-flash"
	}
	if config.Scheduler.UsageResetSchedule == "" {
		config.Scheduler.UsageResetSchedule = "@daily"
	}
	if config.Scheduler.SessionPurgeSchedule == "" {
		config.Scheduler.SessionPurgeSchedule = "@hourly"
	}
	if config.Port == 0 {
		config.Port = 8080
		warnings = append(warnings, "port not set, using default value of 8080")
	}

	// Override with environment variables if they exist
	if dsn := os.Getenv("PROFILEIMPORT_DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if dbType := os.Getenv("PROFILEIMPORT_DATABASE_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if port := os.Getenv("PROFILEIMPORT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if password := os.Getenv("PROFILEIMPORT_ADMIN_PASSWORD"); password != "" {
		config.Admin.Password = password
	}
	if apiKey := os.Getenv("PROFILEIMPORT_GEMINI_API_KEY"); apiKey != "" {
		config.Enrichment.APIKey = apiKey
	}
	if debug := os.Getenv("PROFILEIMPORT_DEBUG"); debug != "" {
		config.Debug = (debug == "true")
	}

	// Final validation after overrides
	if config.Database.Type == "" || config.Database.DSN == "" {
		return nil, "", fmt.Errorf("database type and dsn must be configured in config.yaml or via environment variables")
	}
	for _, p := range config.Importer.Providers {
		if p.Name == "" || p.BaseURL == "" {
			return nil, "", fmt.Errorf("every importer provider needs a name and base_url")
		}
		if p.Mode != "sync" && p.Mode != "async" {
			return nil, "", fmt.Errorf("provider %s: mode must be \"sync\" or \"async\"", p.Name)
		}
		if p.Mode == "async" && p.Dataset == "" {
			return nil, "", fmt.Errorf("provider %s: async providers need a dataset", p.Name)
		}
	}

	return &config, strings.Join(warnings, "; "), nil
}
