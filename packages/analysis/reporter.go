package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders summaries and comparisons for the terminal
type Reporter struct {
	writer io.Writer

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	bold   *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		if noColor {
			for _, c := range []*color.Color{r.green, r.red, r.yellow, r.cyan, r.bold} {
				c.DisableColor()
			}
		}
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
		bold:   color.New(color.Bold),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Summary prints per-column statistics of a run
func (r *Reporter) Summary(s *Summary) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "BENCHMARK SUMMARY")
	fmt.Fprintln(r.writer, strings.Repeat("─", 40))

	r.cyan.Fprintf(r.writer, "Source:   %s\n", s.Source)
	fmt.Fprintf(r.writer, "Requests: ")
	r.bold.Fprintf(r.writer, "%d", s.Requests)
	fmt.Fprintln(r.writer)

	fmt.Fprintf(r.writer, "Failed:   ")
	if s.Failed > 0 {
		r.red.Fprintf(r.writer, "%d", s.Failed)
	} else {
		r.green.Fprintf(r.writer, "%d", s.Failed)
	}
	fmt.Fprintln(r.writer)

	if s.Requests == 0 {
		fmt.Fprintln(r.writer)
		r.yellow.Fprintln(r.writer, "No records to summarize.")
		return
	}

	fmt.Fprintln(r.writer)
	r.bold.Fprintf(r.writer, "%-18s %10s %10s %10s %10s %10s %10s %10s\n",
		"metric", "mean", "stddev", "min", "p50", "p95", "p99", "max")
	for _, c := range s.Columns {
		fmt.Fprintf(r.writer, "%-18s %10.3f %10.3f %10.3f %10.3f %10.3f %10.3f %10.3f\n",
			c.Name, c.Mean, c.StdDev, c.Min, c.P50, c.P95, c.P99, c.Max)
	}
	fmt.Fprintln(r.writer)
}

// Comparison prints a side-by-side comparison of runs
func (r *Reporter) Comparison(rows []Comparison) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "RUN COMPARISON (response_time_ms)")
	fmt.Fprintln(r.writer, strings.Repeat("─", 40))

	for i, c := range rows {
		r.cyan.Fprintf(r.writer, "%s\n", c.Label)
		fmt.Fprintf(r.writer, "  requests: %d | failed: %d | mean: %.3f | stddev: %.3f | p95: %.3f | size: %.2f KB",
			c.Requests, c.Failed, c.MeanMs, c.StdDevMs, c.P95Ms, c.MeanSizeKB)
		if i > 0 {
			fmt.Fprint(r.writer, " | ")
			delta := fmt.Sprintf("%+.1f%%", c.DeltaMeanPct)
			switch {
			case c.DeltaMeanPct > 0:
				r.red.Fprint(r.writer, delta)
			case c.DeltaMeanPct < 0:
				r.green.Fprint(r.writer, delta)
			default:
				fmt.Fprint(r.writer, delta)
			}
		}
		fmt.Fprintln(r.writer)
	}
	fmt.Fprintln(r.writer)
}

// JSONComparison outputs a comparison as JSON
func (r *Reporter) JSONComparison(rows []Comparison) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}
