package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Storage Storage `mapstructure:"storage"`
	Cache   Cache   `mapstructure:"cache"`
	YouTube YouTube `mapstructure:"youtube"`
	Logging Logging `mapstructure:"logging"`
}

// Storage holds persistence configuration
type Storage struct {
	Dir string `mapstructure:"dir"` // database directory; empty means memory-only
}

// Cache holds cache tuning
type Cache struct {
	VideoTTLMinutes    int `mapstructure:"video_ttl_minutes"`    // unified video cache freshness
	SweepIntervalHours int `mapstructure:"sweep_interval_hours"` // expired-entry cleanup interval
}

// YouTube holds Data API configuration. The API key is only needed for the
// duration-filtered recent-videos path; feeds and resolution work without
// it.
type YouTube struct {
	APIKey string `mapstructure:"api_key"`
}

// Logging holds logging configuration
type Logging struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: Storage{Dir: defaultDataPath()},
		Cache: Cache{
			VideoTTLMinutes:    30,
			SweepIntervalHours: 24,
		},
		Logging: Logging{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("TUBEDECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// defaultConfigPath returns the config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tubedeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "tubedeck")
	}
}

// defaultDataPath returns the database directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "tubedeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "tubedeck")
	}
}

// defaultLogPath returns the log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tubedeck", "tubedeck.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "tubedeck", "tubedeck.log")
	}
}
