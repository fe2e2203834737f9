// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type EmailConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	Sender  string `yaml:"sender"`
	// Loaded from environment
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Queue   string `yaml:"queue"`
	// Loaded from environment (AMQP_URL)
	URL string `yaml:"-"`
}

// Duration wraps time.Duration so yaml values like "24h" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type SchedulerConfig struct {
	Enabled          bool     `yaml:"enabled"`
	ReminderLeadTime Duration `yaml:"reminder_lead_time"`
	ReminderCron     string   `yaml:"reminder_cron"`
	ClosureSweepCron string   `yaml:"closure_sweep_cron"`
	ClosureRetention Duration `yaml:"closure_retention"`
}

type Config struct {
	App struct {
		Name            string `yaml:"name"`
		Environment     string `yaml:"environment"`
		Port            int    `yaml:"port"`
		BaseURL         string `yaml:"base_url"`
		DefaultTimezone string `yaml:"default_timezone"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	Notify    NotifyConfig    `yaml:"notify"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.Notify.URL = os.Getenv("AMQP_URL")

	if cfg.App.DefaultTimezone == "" {
		cfg.App.DefaultTimezone = "America/Lima"
	}
	if cfg.Scheduler.ReminderLeadTime == 0 {
		cfg.Scheduler.ReminderLeadTime = Duration(24 * time.Hour)
	}
	if cfg.Scheduler.ReminderCron == "" {
		cfg.Scheduler.ReminderCron = "*/15 * * * *"
	}
	if cfg.Scheduler.ClosureSweepCron == "" {
		cfg.Scheduler.ClosureSweepCron = "0 3 * * *"
	}
	if cfg.Scheduler.ClosureRetention == 0 {
		cfg.Scheduler.ClosureRetention = Duration(365 * 24 * time.Hour)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Email.Enabled {
		if c.Email.Region == "" {
			return fmt.Errorf("email region is required when email is enabled")
		}
		if c.Email.Sender == "" {
			return fmt.Errorf("email sender is required when email is enabled")
		}
	}

	if c.Notify.Enabled && c.Notify.Queue == "" {
		return fmt.Errorf("notify queue name is required when notifications are enabled")
	}

	return nil
}
