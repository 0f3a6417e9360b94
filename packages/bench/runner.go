package bench

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/mcbench/packages/http"
	"github.com/abdul-hamid-achik/mcbench/packages/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetcher performs one GET request, writing the body to body.
// A failed request may still return the checkpoints it reached.
type Fetcher interface {
	Fetch(ctx context.Context, url string, body io.Writer) (*http.Timing, error)
}

// RunInfo describes a run for history sinks.
type RunInfo struct {
	ID        string
	URL       string
	StartedAt time.Time
	CSVPath   string
}

// History persists runs and their records alongside the CSV.
type History interface {
	BeginRun(ctx context.Context, run RunInfo) error
	RecordResult(ctx context.Context, runID string, r Record) error
}

// Runner executes benchmark runs
type Runner struct {
	config    *Config
	fetcher   Fetcher
	reporter  *Reporter
	inspector *Inspector
	history   History
	logger    *zap.Logger
	limiter   *rate.Limiter
	now       func() time.Time
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithFetcher sets the HTTP fetcher
func WithFetcher(f Fetcher) RunnerOption {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithReporter sets the reporter
func WithReporter(reporter *Reporter) RunnerOption {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

// WithInspector enables response body inspection
func WithInspector(in *Inspector) RunnerOption {
	return func(r *Runner) {
		r.inspector = in
	}
}

// WithHistory sets a history sink
func WithHistory(h History) RunnerOption {
	return func(r *Runner) {
		r.history = h
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithClock overrides the clock used to name the run directory
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a new benchmark runner
func NewRunner(config *Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		config: config,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.fetcher == nil {
		r.fetcher = http.NewClient()
	}
	if r.reporter == nil {
		r.reporter = NewReporter()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if config.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(config.Rate), 1)
	}

	return r
}

// Result holds the outcome of a run
type Result struct {
	RunID   string
	RunDir  string
	CSVPath string
	Records []Record
	Failed  int
}

// Run creates the run directory and results file, then performs the
// configured number of requests one after another. Request failures are
// recorded and do not stop the run; filesystem failures do.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx = logging.WithLogger(ctx, r.logger)
	started := r.now()

	runDir := RunDir(r.config.BaseDir, started)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	csvPath, err := filepath.Abs(filepath.Join(runDir, ResultsFileName))
	if err != nil {
		return nil, fmt.Errorf("resolving results path: %w", err)
	}

	results, err := CreateResultsFile(csvPath)
	if err != nil {
		return nil, err
	}
	defer results.Close()

	result := &Result{
		RunID:   uuid.NewString(),
		RunDir:  runDir,
		CSVPath: csvPath,
		Records: make([]Record, 0, r.config.Runs),
	}

	r.logger.Debug("starting benchmark",
		zap.String("run_id", result.RunID),
		zap.String("url", r.config.URL),
		zap.Int("runs", r.config.Runs),
		zap.String("results", csvPath))

	history := r.history
	if history != nil {
		info := RunInfo{ID: result.RunID, URL: r.config.URL, StartedAt: started, CSVPath: csvPath}
		if err := history.BeginRun(ctx, info); err != nil {
			r.logger.Warn("history disabled for this run", zap.Error(err))
			history = nil
		}
	}

	for seq := 1; seq <= r.config.Runs; seq++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		if err := r.step(ctx, seq, results, history, result); err != nil {
			return result, err
		}
	}

	if err := results.Close(); err != nil {
		return result, fmt.Errorf("closing results file: %w", err)
	}

	r.reporter.Done(csvPath)
	return result, nil
}

// step performs request seq with its own response buffer, appends the row
// and reports progress. The buffer is removed last, whatever the outcome.
func (r *Runner) step(ctx context.Context, seq int, results *ResultsFile, history History, result *Result) error {
	buf, err := os.CreateTemp(r.config.TempDir, "mcbench-body-*")
	if err != nil {
		return fmt.Errorf("creating response buffer: %w", err)
	}
	defer func() {
		_ = buf.Close()
		_ = os.Remove(buf.Name())
	}()

	record, failed, err := r.request(ctx, seq, buf)
	if err != nil {
		return err
	}
	if failed {
		result.Failed++
	}

	if err := results.Append(record); err != nil {
		return err
	}
	result.Records = append(result.Records, record)

	if history != nil {
		if err := history.RecordResult(ctx, result.RunID, record); err != nil {
			r.logger.Warn("failed to store record", zap.Int("request", seq), zap.Error(err))
		}
	}

	r.reporter.Progress(seq)
	return nil
}

// request fetches the URL into buf and turns the timing into a record.
// Transport errors mark the record failed; only cancellation is returned.
func (r *Runner) request(ctx context.Context, seq int, buf *os.File) (Record, bool, error) {
	timing, err := r.fetcher.Fetch(ctx, r.config.URL, buf)
	if err != nil {
		if ctx.Err() != nil {
			return Record{}, true, ctx.Err()
		}
		r.logger.Warn("request failed",
			zap.Int("request", seq),
			zap.String("url", r.config.URL),
			zap.Error(err))
		return NewRecord(seq, timing), true, nil
	}

	if timing != nil && !timing.IsSuccess() {
		r.logger.Debug("non-2xx response recorded",
			zap.Int("request", seq),
			zap.Int("status", timing.StatusCode))
	}

	if r.inspector != nil {
		if _, err := r.inspector.Inspect(ctx, seq, buf); err != nil {
			r.logger.Warn("failed to inspect response", zap.Int("request", seq), zap.Error(err))
		}
	}

	return NewRecord(seq, timing), false, nil
}
