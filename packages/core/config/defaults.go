package config

import (
	"github.com/abdul-hamid-achik/mcbench/packages/bench"
	"github.com/abdul-hamid-achik/mcbench/packages/logging"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseDir:         bench.DefaultBaseDir,
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(false),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Proxy:           "",
		Headers:         nil,
		Rate:            0,
		Database:        "",
		Schema:          "",
		LogLevel:        logging.DefaultLevel,
		NoColor:         BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.BaseDir == defaults.BaseDir &&
		c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.Rate == defaults.Rate &&
		c.Database == defaults.Database &&
		c.Schema == defaults.Schema &&
		c.LogLevel == defaults.LogLevel &&
		c.GetNoColor() == defaults.GetNoColor()
}
