package env

import (
	"os"
	"strings"
)

// LoadSystemEnv returns the process environment variables starting with
// prefix, keyed without it.
func LoadSystemEnv(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		result[strings.TrimPrefix(key, prefix)] = value
	}
	return result
}
