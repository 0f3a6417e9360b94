// Package metrics exports run summaries to files and monitoring systems.
package metrics

import (
	"github.com/abdul-hamid-achik/mcbench/packages/analysis"
)

// Exporter is the interface for metrics exporters
type Exporter interface {
	// Export exports a run summary to the target destination
	Export(summary *analysis.Summary) error

	// Close closes the exporter and flushes any buffered data
	Close() error
}

// Collector fans a summary out to several exporters
type Collector struct {
	exporters []Exporter
}

// NewCollector creates a new metrics collector
func NewCollector(exporters ...Exporter) *Collector {
	return &Collector{exporters: exporters}
}

// Export exports the summary to every exporter, stopping at the first error
func (c *Collector) Export(summary *analysis.Summary) error {
	for _, exp := range c.exporters {
		if err := exp.Export(summary); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all exporters
func (c *Collector) Close() error {
	for _, exp := range c.exporters {
		if err := exp.Close(); err != nil {
			return err
		}
	}
	return nil
}
