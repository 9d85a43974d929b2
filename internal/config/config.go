// Package config loads scoutd configuration from a YAML file and
// SCOUT_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ErrConfigNotFound is returned when the config file is not found by Load.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config is the scoutd application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Export   ExportConfig   `mapstructure:"export"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// DatabaseConfig holds the sqlite datastore settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ExportConfig holds export output settings.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{ListenAddr: ":8080"},
		Database: DatabaseConfig{Path: "scout.db"},
		Export:   ExportConfig{Dir: "."},
		Logging:  LoggingConfig{Verbose: false},
	}
}

// Load reads configuration from the given file, falling back to defaults
// when configFile is empty and no config.yaml exists in the working
// directory. Environment variables with the SCOUT_ prefix override file
// values.
func Load(configFile string) (*Config, error) {
	config := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SCOUT")
	v.AutomaticEnv()
	_ = v.BindEnv("server.listen_addr", "SCOUT_LISTEN_ADDR")
	_ = v.BindEnv("database.path", "SCOUT_DB_PATH")
	_ = v.BindEnv("export.dir", "SCOUT_EXPORT_DIR")
	_ = v.BindEnv("logging.verbose", "SCOUT_VERBOSE")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No file at all is fine; defaults plus env cover it.
			if err := v.Unmarshal(config); err != nil {
				return nil, fmt.Errorf("unmarshal config: %w", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}

// Save writes the configuration to a YAML file, creating the parent
// directory if needed.
func (c *Config) Save(configFile string) error {
	if configFile == "" {
		configFile = "config.yaml"
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.Set("server.listen_addr", c.Server.ListenAddr)
	v.Set("database.path", c.Database.Path)
	v.Set("export.dir", c.Export.Dir)
	v.Set("logging.verbose", c.Logging.Verbose)
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
