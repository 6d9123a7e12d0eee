package config

import (
	"strings"

	"github.com/spf13/viper"
)

// AppConfig is the server runtime configuration, resolved from an optional
// config file, FRESHBUDGET_* environment variables, and defaults.
type AppConfig struct {
	Listen   string `mapstructure:"listen"`
	DBPath   string `mapstructure:"db_path"`
	LogLevel string `mapstructure:"log_level"`
	DevMode  bool   `mapstructure:"dev_mode"`
}

// LoadAppConfig reads the runtime configuration. An empty cfgFile means
// defaults plus environment only; a named file that does not exist is an
// error.
func LoadAppConfig(cfgFile string) (*AppConfig, error) {
	v := viper.New()
	v.SetDefault("listen", ":8080")
	v.SetDefault("db_path", "data/freshbudget.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("dev_mode", false)

	v.SetEnvPrefix("FRESHBUDGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
