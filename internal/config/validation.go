package config

import (
	"fmt"
	"net"
	"strings"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validKeywords  = []string{"default", "legacy"}
	validFormats   = []string{"jsonl", "json", "csv", "table"}
)

func validateConfig(c *Config) error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of %v, got %q", validLogLevels, c.LogLevel)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if err := ValidateAddr(c.Server.Addr); err != nil {
		return fmt.Errorf("server.addr: %w", err)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if !contains(validKeywords, c.Query.Keywords) {
		return fmt.Errorf("query.keywords must be one of %v, got %q", validKeywords, c.Query.Keywords)
	}
	if !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %v, got %q", validFormats, c.Output.Format)
	}
	return nil
}

// ValidateAddr validates a host:port listen address
func ValidateAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
