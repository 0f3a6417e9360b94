package bench

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Reporter handles console output for benchmark runs
type Reporter struct {
	writer  io.Writer
	noColor bool

	green *color.Color
	red   *color.Color
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
		r.noColor = noColor
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	if r.noColor {
		r.green.DisableColor()
		r.red.DisableColor()
	}

	return r
}

// Progress reports a completed request
func (r *Reporter) Progress(seq int) {
	fmt.Fprintf(r.writer, "Request %d completed\n", seq)
}

// Done reports where the results were written
func (r *Reporter) Done(path string) {
	fmt.Fprint(r.writer, "Results saved to ")
	r.green.Fprintln(r.writer, path)
}

// Error prints an error message
func (r *Reporter) Error(format string, args ...interface{}) {
	r.red.Fprintf(r.writer, "Error: "+format+"\n", args...)
}
