package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Export    ExportConfig    `yaml:"export"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// ExportConfig configures the export destinations used by planport-export.
type ExportConfig struct {
	StateDir   string           `yaml:"state_dir"`
	PlanMyPeak PlanMyPeakConfig `yaml:"planmypeak"`
	Intervals  IntervalsConfig  `yaml:"intervals"`
}

type PlanMyPeakConfig struct {
	URL            string `yaml:"url"`
	APIKey         string `yaml:"api_key"`
	LibraryName    string `yaml:"library_name"`
	ConflictAction string `yaml:"conflict_action"`
}

type IntervalsConfig struct {
	BaseURL        string `yaml:"base_url"`
	AthleteID      string `yaml:"athlete_id"`
	APIKey         string `yaml:"api_key"`
	FolderName     string `yaml:"folder_name"`
	ConflictAction string `yaml:"conflict_action"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix PLANPORT_ and underscore-separated paths:
//
//	PLANPORT_SERVER_HOST, PLANPORT_SERVER_PORT,
//	PLANPORT_DB_HOST, PLANPORT_DB_PORT, PLANPORT_DB_NAME,
//	PLANPORT_DB_USER, PLANPORT_DB_PASSWORD, PLANPORT_DB_SSLMODE,
//	PLANPORT_AUTH_API_KEY,
//	PLANPORT_PMP_URL, PLANPORT_PMP_API_KEY,
//	PLANPORT_ICU_ATHLETE_ID, PLANPORT_ICU_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLANPORT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PLANPORT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PLANPORT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("PLANPORT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("PLANPORT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("PLANPORT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("PLANPORT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PLANPORT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("PLANPORT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("PLANPORT_PMP_URL"); v != "" {
		cfg.Export.PlanMyPeak.URL = v
	}
	if v := os.Getenv("PLANPORT_PMP_API_KEY"); v != "" {
		cfg.Export.PlanMyPeak.APIKey = v
	}
	if v := os.Getenv("PLANPORT_ICU_ATHLETE_ID"); v != "" {
		cfg.Export.Intervals.AthleteID = v
	}
	if v := os.Getenv("PLANPORT_ICU_API_KEY"); v != "" {
		cfg.Export.Intervals.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Export.StateDir == "" {
		c.Export.StateDir = ".planport"
	}
	if c.Export.PlanMyPeak.ConflictAction == "" {
		c.Export.PlanMyPeak.ConflictAction = "append"
	}
	if c.Export.Intervals.ConflictAction == "" {
		c.Export.Intervals.ConflictAction = "append"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	for dest, action := range map[string]string{
		"export.planmypeak": c.Export.PlanMyPeak.ConflictAction,
		"export.intervals":  c.Export.Intervals.ConflictAction,
	} {
		if action != "append" && action != "replace" {
			return fmt.Errorf("%s.conflict_action must be append or replace, got %q", dest, action)
		}
	}
	return nil
}
