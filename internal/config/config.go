// Package config defines routecore's top-level configuration and loads it
// from file, environment, and flags via viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration struct. The zero Config does not
// pass Validate (DepthCost, LossyCostMultiplier and LogFrequency must be
// positive), so callers start from Default() and override only what they
// need.
type Config struct {
	// Graph behaviour.
	StrictCategories bool // default false; see spec §4.4
	SafetyFilter     bool // default true; disables the image→video→audio sentinel when false
	SimpleMode       bool // default false; relax target-handler matching during search

	// Cost tuning (tunable constants, spec §6).
	DepthCost                 float64
	DefaultCategoryChangeCost float64
	LossyCostMultiplier       float64
	HandlerPriorityCost       float64
	FormatPriorityCost        float64
	LogFrequency              int

	// Handler init / conversion timeouts.
	HandlerInitTimeout time.Duration
	ConvertTimeout     time.Duration

	// Cost-table config file, watched for live reload.
	CostTableFile string

	// Format cache persistence.
	CachePath string

	// Live event stream server.
	EventsAddr string

	LogLevel string // "debug", "info", "warn", "error"
}

// Default returns a Config populated with sensible production defaults,
// matching the tunable constants enumerated in spec §6.
func Default() Config {
	return Config{
		StrictCategories:          false,
		SafetyFilter:              true,
		SimpleMode:                false,
		DepthCost:                 1,
		DefaultCategoryChangeCost: 0.6,
		LossyCostMultiplier:       1.4,
		HandlerPriorityCost:       0.2,
		FormatPriorityCost:        0.05,
		LogFrequency:              1000,
		HandlerInitTimeout:        30 * time.Second,
		ConvertTimeout:            2 * time.Minute,
		CachePath:                 "routecore-cache.json",
		EventsAddr:                "",
		LogLevel:                  "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.DepthCost <= 0 {
		return errors.New("config: DepthCost must be positive")
	}
	if c.LossyCostMultiplier <= 0 {
		return errors.New("config: LossyCostMultiplier must be positive")
	}
	if c.LogFrequency <= 0 {
		return errors.New("config: LogFrequency must be positive")
	}
	return nil
}

// Load reads configuration from (in order of increasing precedence) the
// built-in defaults, a config file located by viper (routec.yaml/toml/json
// in the current directory or /etc/routec/), environment variables prefixed
// ROUTEC_, and finally any values already bound to flags on v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	v.SetConfigName("routec")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/routec/")
	v.SetEnvPrefix("ROUTEC")
	v.AutomaticEnv()

	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

func bindDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("strictcategories", cfg.StrictCategories)
	v.SetDefault("safetyfilter", cfg.SafetyFilter)
	v.SetDefault("simplemode", cfg.SimpleMode)
	v.SetDefault("depthcost", cfg.DepthCost)
	v.SetDefault("defaultcategorychangecost", cfg.DefaultCategoryChangeCost)
	v.SetDefault("lossycostmultiplier", cfg.LossyCostMultiplier)
	v.SetDefault("handlerprioritycost", cfg.HandlerPriorityCost)
	v.SetDefault("formatprioritycost", cfg.FormatPriorityCost)
	v.SetDefault("logfrequency", cfg.LogFrequency)
	v.SetDefault("handlerinittimeout", cfg.HandlerInitTimeout)
	v.SetDefault("converttimeout", cfg.ConvertTimeout)
	v.SetDefault("costtablefile", cfg.CostTableFile)
	v.SetDefault("cachepath", cfg.CachePath)
	v.SetDefault("eventsaddr", cfg.EventsAddr)
	v.SetDefault("loglevel", cfg.LogLevel)
}
