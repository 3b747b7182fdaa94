package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Detect  DetectConfig  `mapstructure:"detect"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir string `mapstructure:"data_dir"`
	DBFile  string `mapstructure:"db_file"`
	LogFile string `mapstructure:"log_file"`
}

// DetectConfig contains detection engine configuration
type DetectConfig struct {
	// ProbeTimeout bounds every individual probe; registry and network
	// filesystem calls can hang and the completion barrier has no other
	// escape.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`

	// ChromeChannels maps Google Update client GUIDs to release
	// channels. The mapping ships as data rather than code so new
	// channels can be added without a rebuild.
	ChromeChannels map[string]string `mapstructure:"chrome_channels"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "browserscout"))
	}
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("BROWSERSCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.DBFile = expandPath(cfg.Paths.DBFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	viper.SetDefault("paths.data_dir", filepath.Join(homeDir, ".local", "share", "browserscout"))
	viper.SetDefault("paths.db_file", filepath.Join(homeDir, ".local", "share", "browserscout", "scans.db"))
	viper.SetDefault("paths.log_file", filepath.Join(homeDir, ".local", "share", "browserscout", "browserscout.log"))

	viper.SetDefault("detect.probe_timeout", "10s")

	// Google Update client GUIDs per channel, as registered by the
	// Chrome installers.
	viper.SetDefault("detect.chrome_channels", map[string]string{
		"{8A69D345-D564-463C-AFF1-A69D9E530F96}": "stable",
		"{8237E44A-0054-442C-B6B6-EA0509993955}": "beta",
		"{401C381F-E0DE-4B85-8BD8-3F3F14FBDA57}": "dev",
		"{4EA16AC7-FD5A-47C3-875B-DBF4A2008C20}": "canary",
	})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	path = os.ExpandEnv(path)

	return path
}
