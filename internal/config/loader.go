package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override, e.g.
// INSIGHT_SERVER_ADDR for server.addr
const EnvPrefix = "INSIGHT"

// Load loads configuration from various sources with priority order:
// 1. Environment variables
// 2. Configuration file (insight.yaml, or configFile when set)
// 3. Default values
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("insight")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/insight/")
		v.AddConfigPath("./configs/")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)

	setDefaults(v)

	// Config file is optional unless named explicitly
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets reasonable default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", "./data")

	v.SetDefault("server.addr", ":4321")
	v.SetDefault("server.max_body_bytes", 64<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("query.keywords", "default")

	v.SetDefault("output.format", "jsonl")
}
