package config

// Config is the process configuration of the insight server and CLI
type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	DataDir     string `mapstructure:"data_dir" yaml:"data_dir"`

	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Query  QueryConfig  `mapstructure:"query" yaml:"query"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// QueryConfig configures query parsing
type QueryConfig struct {
	// Keywords selects the structural keyword set: "default" or "legacy"
	Keywords string `mapstructure:"keywords" yaml:"keywords"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// IsProduction reports whether the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
