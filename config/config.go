// Package config binds heapdb's runtime settings from defaults, environment
// and an optional config file, following the config-from-many-sources
// pattern common across the example corpus's larger services.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings a heapdb CLI invocation needs.
type Config struct {
	// DataDir is the directory heap files and their schema sidecars are read
	// from and written to.
	DataDir string
	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	LogLevel string
}

// Load reads settings from, in ascending priority: built-in defaults, a
// config file named heapdb.yaml/.json/.toml on the search path, and
// HEAPDB_-prefixed environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", "./data")
	v.SetDefault("log_level", "info")

	v.SetConfigName("heapdb")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.heapdb")

	v.SetEnvPrefix("heapdb")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		DataDir:  v.GetString("data_dir"),
		LogLevel: v.GetString("log_level"),
	}, nil
}
