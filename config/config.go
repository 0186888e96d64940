// Package config loads the run configuration from a yaml file layered on
// top of defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/oluski/go-vintages/arima"
	"gopkg.in/yaml.v3"
)

// DefaultSourceURL is the publisher endpoint for prior releases of the
// vacancies series; the %d verb takes the vintage identifier.
const DefaultSourceURL = "https://www.ons.gov.uk/generator?format=csv&uri=/employmentandlabourmarket/peopleinwork/employmentandemployeetypes/timeseries/ap2y/lms/previous/v%d"

// Duration wraps time.Duration so yaml configs can use values like "3s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q, %w", raw, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds every tunable of a run.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	SourceURL string `yaml:"source_url"`

	StartVintage   int      `yaml:"start_vintage"`
	EndVintage     int      `yaml:"end_vintage"`
	RequestSpacing Duration `yaml:"request_spacing"`

	Order      arima.Order `yaml:"order"`
	Horizon    int         `yaml:"horizon"`
	Confidence float64     `yaml:"confidence"`

	RevisionOut string `yaml:"revision_out"`
	ForecastOut string `yaml:"forecast_out"`
	ReportOut   string `yaml:"report_out"`
	// ReportMonth selects the month whose revision history is charted,
	// formatted as "Jan 2006". Empty uses the last canonical month.
	ReportMonth string `yaml:"report_month"`
}

// Default returns the configuration matching the published analysis.
func Default() *Config {
	return &Config{
		DataDir:        "ons_uk_vacancies",
		SourceURL:      DefaultSourceURL,
		StartVintage:   117,
		EndVintage:     58,
		RequestSpacing: Duration(3 * time.Second),
		Order:          arima.Order{P: 1, D: 1, Q: 1},
		Horizon:        6,
		Confidence:     0.95,
		RevisionOut:    "vacancies_consolidated.csv",
		ForecastOut:    "vacancies_forecast.csv",
		ReportOut:      "vacancies_report.html",
	}
}

// Load reads path over the defaults. A missing path returns the defaults
// untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("config file not found, using defaults", slog.String("path", path))
			return cfg, nil
		}
		return nil, fmt.Errorf("unable to read config, %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("loaded config", slog.String("path", path))
	return cfg, nil
}

// Validate checks the ranges that would otherwise surface as confusing
// downstream failures.
func (c *Config) Validate() error {
	if c.Horizon < 1 {
		return fmt.Errorf("horizon must be at least 1, got %d", c.Horizon)
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("confidence must be in (0, 1), got %g", c.Confidence)
	}
	if c.Order.P < 0 || c.Order.D < 0 || c.Order.Q < 0 {
		return fmt.Errorf("model order terms must be non-negative, got %s", c.Order)
	}
	if c.StartVintage < c.EndVintage {
		return fmt.Errorf("start_vintage %d below end_vintage %d", c.StartVintage, c.EndVintage)
	}
	if c.RequestSpacing < 0 {
		return fmt.Errorf("request_spacing must be non-negative, got %s", c.RequestSpacing.Std())
	}
	return nil
}
