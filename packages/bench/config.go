// Package bench runs the model card benchmark: a fixed number of sequential
// GET requests against a fixed endpoint, one CSV row per request.
package bench

import (
	"fmt"
	"path/filepath"
	"time"
)

const (
	// DefaultRuns is the number of requests in a benchmark run.
	DefaultRuns = 100

	// DefaultURL is the model card endpoint under test.
	DefaultURL = "http://localhost:5002/modelcard/3f7b2c82-75fa-4335-a3b8-e1930893a974"

	// DefaultBaseDir is where benchmark_results/ is created.
	DefaultBaseDir = "/app"

	ResultsDirName  = "benchmark_results"
	ResultsFileName = "get_modelcard.csv"

	// RunStampLayout formats the run directory timestamp as YYYYMMDD_HHMMSS.
	RunStampLayout = "20060102_150405"
)

// Config holds the settings of one benchmark run
type Config struct {
	Runs    int
	URL     string
	BaseDir string
	TempDir string  // where per-request response buffers live; "" means os.TempDir()
	Rate    float64 // max requests per second; 0 means unpaced
}

// DefaultConfig returns the fixed benchmark settings
func DefaultConfig() *Config {
	return &Config{
		Runs:    DefaultRuns,
		URL:     DefaultURL,
		BaseDir: DefaultBaseDir,
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Runs < 1 {
		return fmt.Errorf("runs must be at least 1")
	}
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.BaseDir == "" {
		return fmt.Errorf("base directory is required")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	return nil
}

// ResultsRoot returns <base>/benchmark_results.
func ResultsRoot(base string) string {
	return filepath.Join(base, ResultsDirName)
}

// RunDir returns <base>/benchmark_results/run_<YYYYMMDD_HHMMSS> for now in
// local time.
func RunDir(base string, now time.Time) string {
	return filepath.Join(ResultsRoot(base), "run_"+now.Local().Format(RunStampLayout))
}
