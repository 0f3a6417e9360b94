package config

import (
	"fmt"
	"strconv"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "MCBENCH_"

// FromEnv builds an override config from environment variables keyed
// without EnvPrefix (BASE_DIR, TIMEOUT, RATE, DB, SCHEMA, PROXY, LOG_LEVEL,
// NO_COLOR, INSECURE). Unset keys leave the zero value so Merge skips them.
func FromEnv(vars map[string]string) (*Config, error) {
	c := &Config{
		BaseDir:  vars["BASE_DIR"],
		Database: vars["DB"],
		Schema:   vars["SCHEMA"],
		Proxy:    vars["PROXY"],
		LogLevel: vars["LOG_LEVEL"],
	}

	if v := vars["TIMEOUT"]; v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%sTIMEOUT: %q is not a number of milliseconds", EnvPrefix, v)
		}
		c.Timeout = ms
	}
	if v := vars["RATE"]; v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%sRATE: %q is not a number", EnvPrefix, v)
		}
		c.Rate = rate
	}
	if v := vars["NO_COLOR"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%sNO_COLOR: %w", EnvPrefix, err)
		}
		c.NoColor = BoolPtr(b)
	}
	if v := vars["INSECURE"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%sINSECURE: %w", EnvPrefix, err)
		}
		c.ValidateSSL = BoolPtr(!b)
	}

	return c, nil
}
