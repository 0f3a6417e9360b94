package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/abdul-hamid-achik/mcbench/packages/analysis"
)

// PrometheusExporter exports summaries in Prometheus text format. Each
// export replaces the previous values.
type PrometheusExporter struct {
	registry *prometheus.Registry
	requests *prometheus.GaugeVec
	failed   *prometheus.GaugeVec
	values   *prometheus.GaugeVec

	writer   io.Writer
	filePath string
	port     int
	server   *http.Server
}

// PrometheusOption is a functional option for PrometheusExporter
type PrometheusOption func(*PrometheusExporter)

// WithPrometheusWriter sets the output writer for Prometheus metrics
func WithPrometheusWriter(w io.Writer) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.writer = w
	}
}

// WithPrometheusFile writes the exposition to path, e.g. for the node
// exporter textfile collector
func WithPrometheusFile(path string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.filePath = path
	}
}

// WithPrometheusHTTP serves /metrics on port
func WithPrometheusHTTP(port int) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.port = port
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter
func NewPrometheusExporter(opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mcbench",
			Name:      "requests",
			Help:      "Number of requests recorded in the run.",
		}, []string{"run"}),
		failed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mcbench",
			Name:      "requests_failed",
			Help:      "Number of requests that never completed.",
		}, []string{"run"}),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mcbench",
			Name:      "column_value",
			Help:      "Summary statistics per CSV column (ms for times, KB for size).",
		}, []string{"run", "column", "stat"}),
	}
	p.registry.MustRegister(p.requests, p.failed, p.values)

	for _, opt := range opts {
		opt(p)
	}

	if p.port > 0 {
		p.server = &http.Server{
			Addr:    fmt.Sprintf(":%d", p.port),
			Handler: p.Handler(),
		}
		go func() {
			if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "Prometheus HTTP server error: %v\n", err)
			}
		}()
	}

	return p
}

// Handler serves the registry in the Prometheus exposition format
func (p *PrometheusExporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	return mux
}

// Export loads the summary into the registry and writes it out
func (p *PrometheusExporter) Export(summary *analysis.Summary) error {
	p.requests.Reset()
	p.failed.Reset()
	p.values.Reset()

	run := summary.Source
	p.requests.WithLabelValues(run).Set(float64(summary.Requests))
	p.failed.WithLabelValues(run).Set(float64(summary.Failed))

	for _, c := range summary.Columns {
		for stat, v := range map[string]float64{
			"min":    c.Min,
			"max":    c.Max,
			"mean":   c.Mean,
			"stddev": c.StdDev,
			"p50":    c.P50,
			"p95":    c.P95,
			"p99":    c.P99,
		} {
			p.values.WithLabelValues(run, c.Name, stat).Set(v)
		}
	}

	if p.writer != nil {
		if err := p.WriteText(p.writer); err != nil {
			return err
		}
	}

	if p.filePath != "" {
		file, err := os.Create(p.filePath)
		if err != nil {
			return fmt.Errorf("failed to create metrics file: %w", err)
		}
		defer file.Close()
		if err := p.WriteText(file); err != nil {
			return err
		}
	}

	return nil
}

// WriteText writes every gathered metric family in text format
func (p *PrometheusExporter) WriteText(w io.Writer) error {
	families, err := p.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

// Close shuts down the HTTP endpoint, if any
func (p *PrometheusExporter) Close() error {
	if p.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return p.server.Shutdown(ctx)
	}
	return nil
}
