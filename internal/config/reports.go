package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReportConfig holds operator-tunable settings for the reporting endpoints.
// It is loaded from console.yml and hot-reloaded on change.
type ReportConfig struct {
	MinPageSize     int `mapstructure:"minPageSize"`
	MaxPageSize     int `mapstructure:"maxPageSize"`
	DefaultPageSize int `mapstructure:"defaultPageSize"`
	MaxTopN         int `mapstructure:"maxTopN"`
}

func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		MinPageSize:     10,
		MaxPageSize:     100,
		DefaultPageSize: 20,
		MaxTopN:         50,
	}
}

type ReportConfigHolder struct {
	current atomic.Value // holds ReportConfig
}

func NewReportConfigHolder() (*ReportConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("console")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/console/config")
	v.AddConfigPath("/etc/console")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReportConfig()
	v.SetDefault("reports.minPageSize", defaults.MinPageSize)
	v.SetDefault("reports.maxPageSize", defaults.MaxPageSize)
	v.SetDefault("reports.defaultPageSize", defaults.DefaultPageSize)
	v.SetDefault("reports.maxTopN", defaults.MaxTopN)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg ReportConfig
	if err := v.UnmarshalKey("reports", &cfg); err != nil {
		return nil, err
	}
	if err := validateReportConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReportConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportConfig
		if err := v.UnmarshalKey("reports", &updated); err != nil {
			log.Printf("[report-config] reload failed: %v", err)
			return
		}
		if err := validateReportConfig(updated); err != nil {
			log.Printf("[report-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[report-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticReportConfigHolder wraps a fixed config without file watching.
func NewStaticReportConfigHolder(cfg ReportConfig) *ReportConfigHolder {
	holder := &ReportConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ReportConfigHolder) Get() ReportConfig {
	return h.current.Load().(ReportConfig)
}

func validateReportConfig(cfg ReportConfig) error {
	if cfg.MinPageSize < 1 {
		return errors.New("reports.minPageSize must be at least 1")
	}
	if cfg.MaxPageSize < cfg.MinPageSize {
		return errors.New("reports.maxPageSize must be >= reports.minPageSize")
	}
	if cfg.DefaultPageSize < cfg.MinPageSize || cfg.DefaultPageSize > cfg.MaxPageSize {
		return errors.New("reports.defaultPageSize must fall within [minPageSize, maxPageSize]")
	}
	if cfg.MaxTopN < 1 {
		return errors.New("reports.maxTopN must be at least 1")
	}
	return nil
}
