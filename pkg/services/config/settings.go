package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "SALES_ATLAS"

type Settings struct {
	BackendURL   string         `mapstructure:"backend_url"`
	ForecastDays int            `mapstructure:"forecast_days"`
	Theme        string         `mapstructure:"theme"`
	DBPath       string         `mapstructure:"db_path"`
	Server       ServerSettings `mapstructure:"server"`
}

type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

func (s ServerSettings) Addr() string {
	return s.Host + ":" + s.Port
}

// LoadSettings reads settings from defaults, the optional YAML file at
// path and SALES_ATLAS_* environment variables, in increasing priority.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("backend_url", "http://127.0.0.1:5000")
	v.SetDefault("forecast_days", 30)
	v.SetDefault("theme", "light")
	v.SetDefault("db_path", "sales-atlas.db")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.refresh_interval", "0s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Settings) Validate() error {
	if s.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if s.ForecastDays <= 0 {
		return fmt.Errorf("forecast_days must be positive, got %d", s.ForecastDays)
	}
	if s.Server.RefreshInterval < 0 {
		return fmt.Errorf("server.refresh_interval must not be negative")
	}
	return nil
}

// ApplyProfile overrides settings with the non-empty values of p.
func (s *Settings) ApplyProfile(p *Profile) {
	if p == nil {
		return
	}
	if p.BackendURL != "" {
		s.BackendURL = p.BackendURL
	}
	if p.ForecastDays > 0 {
		s.ForecastDays = p.ForecastDays
	}
}
