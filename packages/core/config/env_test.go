package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	c, err := FromEnv(map[string]string{
		"BASE_DIR":  "/data",
		"TIMEOUT":   "1500",
		"RATE":      "2.5",
		"DB":        "sqlite://h.db",
		"LOG_LEVEL": "debug",
		"NO_COLOR":  "true",
		"INSECURE":  "1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/data", c.BaseDir)
	assert.Equal(t, 1500, c.Timeout)
	assert.Equal(t, 2.5, c.Rate)
	assert.Equal(t, "sqlite://h.db", c.Database)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.GetNoColor())
	assert.False(t, c.GetValidateSSL())
}

func TestFromEnv_EmptyLeavesConfigUntouched(t *testing.T) {
	c, err := FromEnv(nil)
	require.NoError(t, err)

	merged := DefaultConfig().Merge(c)
	assert.True(t, merged.IsDefault())
}

func TestFromEnv_Errors(t *testing.T) {
	tests := map[string]string{
		"TIMEOUT":  "30s",
		"RATE":     "fast",
		"NO_COLOR": "maybe",
		"INSECURE": "sure",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := FromEnv(map[string]string{key: value})
			require.Error(t, err)
			assert.Contains(t, err.Error(), EnvPrefix+key)
		})
	}
}
