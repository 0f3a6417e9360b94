package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/mcbench/packages/analysis"
)

// JSONExporter exports summaries as JSON
type JSONExporter struct {
	writer   io.Writer
	filePath string
	pretty   bool
	now      func() time.Time
}

// JSONOption is a functional option for JSONExporter
type JSONOption func(*JSONExporter)

// WithJSONWriter sets the output writer for JSON metrics
func WithJSONWriter(w io.Writer) JSONOption {
	return func(j *JSONExporter) {
		j.writer = w
	}
}

// WithJSONFile sets the output file for JSON metrics
func WithJSONFile(path string) JSONOption {
	return func(j *JSONExporter) {
		j.filePath = path
	}
}

// WithJSONPretty enables pretty-printed JSON output
func WithJSONPretty(pretty bool) JSONOption {
	return func(j *JSONExporter) {
		j.pretty = pretty
	}
}

// NewJSONExporter creates a new JSON metrics exporter
func NewJSONExporter(opts ...JSONOption) *JSONExporter {
	j := &JSONExporter{
		pretty: true,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// JSONMetricsOutput is the complete JSON output structure
type JSONMetricsOutput struct {
	Metadata JSONMetadata      `json:"metadata"`
	Summary  *analysis.Summary `json:"summary"`
}

// JSONMetadata contains metadata about the export
type JSONMetadata struct {
	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
}

// Export writes the summary to the configured file and/or writer
func (j *JSONExporter) Export(summary *analysis.Summary) error {
	output := JSONMetricsOutput{
		Metadata: JSONMetadata{
			GeneratedAt: j.now().Format(time.RFC3339),
			Version:     "1.0",
		},
		Summary: summary,
	}

	var data []byte
	var err error

	if j.pretty {
		data, err = json.MarshalIndent(output, "", "  ")
	} else {
		data, err = json.Marshal(output)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if j.filePath != "" {
		if err := os.WriteFile(j.filePath, data, 0644); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	if j.writer != nil {
		if _, err := j.writer.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}

// Close closes the JSON exporter
func (j *JSONExporter) Close() error {
	return nil
}
