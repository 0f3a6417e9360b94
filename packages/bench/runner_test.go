package bench

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/mcbench/packages/http"
	"github.com/abdul-hamid-achik/mcbench/packages/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeFetcher returns the same timing for every request and checks that the
// response buffer is a fresh, live temp file.
type fakeFetcher struct {
	t       *testing.T
	timing  http.Timing
	err     error
	body    string
	tempDir string
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, body io.Writer) (*http.Timing, error) {
	f.calls++
	if f.tempDir != "" {
		entries, err := os.ReadDir(f.tempDir)
		require.NoError(f.t, err)
		assert.Len(f.t, entries, 1, "only the current response buffer should exist")
	}
	if f.body != "" {
		_, _ = io.WriteString(body, f.body)
	}
	timing := f.timing
	return &timing, f.err
}

func newTestRunner(t *testing.T, f Fetcher, out io.Writer, opts ...RunnerOption) (*Runner, string, string) {
	t.Helper()
	base := t.TempDir()
	tmp := t.TempDir()

	cfg := DefaultConfig()
	cfg.BaseDir = base
	cfg.TempDir = tmp

	opts = append([]RunnerOption{
		WithFetcher(f),
		WithReporter(NewReporter(WithWriter(out), WithNoColor(true))),
	}, opts...)
	return NewRunner(cfg, opts...), base, tmp
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestRunner_MockedClientValues(t *testing.T) {
	f := &fakeFetcher{t: t, timing: *http.FromSeconds(0.123, 0.010, 0.020, 0.080, 0.005, 2048)}
	var out bytes.Buffer
	runner, _, _ := newTestRunner(t, f, &out)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	lines := readLines(t, result.CSVPath)
	require.Len(t, lines, 101)
	assert.Equal(t, "response_time_ms,dns_lookup_ms,tcp_handshake_ms,ttfb_ms,prepare_ms,response_size_kb", lines[0])
	for i, line := range lines[1:] {
		assert.Equal(t, "123.00000,10.00000,20.00000,80.00000,5.00000,2.00", line, "row %d", i+1)
	}

	assert.Equal(t, 100, f.calls)
	assert.Len(t, result.Records, 100)
	assert.Zero(t, result.Failed)
}

func TestRunner_AllRequestsFail(t *testing.T) {
	f := &fakeFetcher{t: t, err: errors.New("connection refused")}
	var out bytes.Buffer
	runner, _, _ := newTestRunner(t, f, &out)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	lines := readLines(t, result.CSVPath)
	require.Len(t, lines, 101)
	for _, line := range lines[1:] {
		assert.Equal(t, "0.00000,0.00000,0.00000,0.00000,0.00000,0.00", line)
	}
	assert.Equal(t, 100, result.Failed)
	assert.Contains(t, out.String(), "Results saved to "+result.CSVPath+"\n")
}

func TestRunner_ConsoleOutput(t *testing.T) {
	f := &fakeFetcher{t: t}
	var out bytes.Buffer
	runner, _, _ := newTestRunner(t, f, &out)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 101)
	for i := 0; i < 100; i++ {
		assert.Equal(t, "Request "+strconv.Itoa(i+1)+" completed", lines[i])
	}
	assert.Equal(t, "Results saved to "+result.CSVPath, lines[100])
	assert.True(t, filepath.IsAbs(result.CSVPath))
}

func TestRunner_RowShape(t *testing.T) {
	f := &fakeFetcher{t: t, timing: http.Timing{
		Total:       42123456 * time.Nanosecond,
		DNSLookup:   1500 * time.Microsecond,
		Connect:     2 * time.Millisecond,
		TTFB:        40 * time.Millisecond,
		PreTransfer: 2100 * time.Microsecond,
		Size:        31337,
	}}
	runner, _, _ := newTestRunner(t, f, io.Discard)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	rowPattern := regexp.MustCompile(`^(\d+\.\d{5},){5}\d+\.\d{2}$`)
	for _, line := range readLines(t, result.CSVPath)[1:] {
		assert.Len(t, strings.Split(line, ","), 6)
		assert.Regexp(t, rowPattern, line)
	}
}

func TestRunner_RunDirectoryLayout(t *testing.T) {
	f := &fakeFetcher{t: t}
	now := time.Date(2025, 10, 24, 13, 45, 7, 0, time.Local)
	runner, base, _ := newTestRunner(t, f, io.Discard, WithClock(func() time.Time { return now }))

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	wantDir := filepath.Join(base, "benchmark_results", "run_20251024_134507")
	assert.Equal(t, wantDir, result.RunDir)
	assert.Equal(t, filepath.Join(wantDir, "get_modelcard.csv"), result.CSVPath)
	assert.Regexp(t, `run_\d{8}_\d{6}$`, filepath.Base(result.RunDir))
}

func TestRunner_ExistingRunDirIsReused(t *testing.T) {
	f := &fakeFetcher{t: t}
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	runner, base, _ := newTestRunner(t, f, io.Discard, WithClock(func() time.Time { return now }))

	dir := RunDir(base, now)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ResultsFileName), []byte("stale\n"), 0644))

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	lines := readLines(t, result.CSVPath)
	assert.Len(t, lines, 101)
	assert.NotEqual(t, "stale", lines[0])
}

func TestRunner_TempBuffersAreRemoved(t *testing.T) {
	f := &fakeFetcher{t: t, body: `{"id":"x"}`}
	runner, _, tmp := newTestRunner(t, f, io.Discard)
	f.tempDir = tmp

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// bufferCountingWriter records how many response buffers exist each time a
// progress line is written.
type bufferCountingWriter struct {
	t       *testing.T
	tempDir string
	counts  []int
}

func (w *bufferCountingWriter) Write(p []byte) (int, error) {
	if strings.HasPrefix(string(p), "Request ") {
		entries, err := os.ReadDir(w.tempDir)
		require.NoError(w.t, err)
		w.counts = append(w.counts, len(entries))
	}
	return len(p), nil
}

func TestRunner_ProgressReportedBeforeBufferRelease(t *testing.T) {
	f := &fakeFetcher{t: t, body: `{"id":"x"}`}
	out := &bufferCountingWriter{t: t}
	runner, _, tmp := newTestRunner(t, f, out)
	out.tempDir = tmp

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, out.counts, 100)
	for i, n := range out.counts {
		assert.Equal(t, 1, n, "request %d buffer released before progress", i+1)
	}

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunner_TempBuffersRemovedOnFailure(t *testing.T) {
	f := &fakeFetcher{t: t, body: "partial", err: errors.New("reset by peer")}
	runner, _, tmp := newTestRunner(t, f, io.Discard)
	f.tempDir = tmp

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunner_UnwritableBaseDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	f := &fakeFetcher{t: t}
	cfg := DefaultConfig()
	cfg.BaseDir = blocker
	cfg.TempDir = t.TempDir()
	runner := NewRunner(cfg, WithFetcher(f), WithReporter(NewReporter(WithWriter(io.Discard))))

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating run directory")
	assert.Zero(t, f.calls)
}

func TestRunner_MissingTempDirIsFatal(t *testing.T) {
	f := &fakeFetcher{t: t}
	cfg := DefaultConfig()
	cfg.BaseDir = t.TempDir()
	cfg.TempDir = filepath.Join(t.TempDir(), "missing")
	runner := NewRunner(cfg, WithFetcher(f), WithReporter(NewReporter(WithWriter(io.Discard))))

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating response buffer")
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &cancellingFetcher{cancelAt: 3, cancel: cancel}
	runner, _, _ := newTestRunner(t, f, io.Discard)

	result, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, result.Records, 2)

	lines := readLines(t, result.CSVPath)
	assert.Len(t, lines, 3)
}

type cancellingFetcher struct {
	calls    int
	cancelAt int
	cancel   context.CancelFunc
}

func (f *cancellingFetcher) Fetch(ctx context.Context, url string, body io.Writer) (*http.Timing, error) {
	f.calls++
	if f.calls == f.cancelAt {
		f.cancel()
		return &http.Timing{}, ctx.Err()
	}
	return &http.Timing{}, nil
}

func TestRunner_History(t *testing.T) {
	f := &fakeFetcher{t: t, timing: *http.FromSeconds(0.1, 0, 0, 0, 0, 1024)}
	h := &memoryHistory{}
	runner, _, _ := newTestRunner(t, f, io.Discard, WithHistory(h))

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, h.runs, 1)
	assert.Equal(t, result.RunID, h.runs[0].ID)
	assert.Equal(t, DefaultURL, h.runs[0].URL)
	assert.Equal(t, result.CSVPath, h.runs[0].CSVPath)
	assert.Len(t, h.records, 100)
	assert.Equal(t, 100, h.records[99].Seq)
}

func TestRunner_HistoryFailureIsNotFatal(t *testing.T) {
	f := &fakeFetcher{t: t}
	h := &memoryHistory{beginErr: errors.New("database is locked")}
	runner, _, _ := newTestRunner(t, f, io.Discard, WithHistory(h))

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Records, 100)
	assert.Empty(t, h.records)
}

type memoryHistory struct {
	beginErr error
	runs     []RunInfo
	records  []Record
}

func (m *memoryHistory) BeginRun(ctx context.Context, run RunInfo) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryHistory) RecordResult(ctx context.Context, runID string, r Record) error {
	m.records = append(m.records, r)
	return nil
}

func TestRunner_AgainstMockServer(t *testing.T) {
	server := httptest.NewServer(mock.NewServer(mock.WithSize(4096)).Handler())
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseDir = t.TempDir()
	cfg.TempDir = t.TempDir()
	cfg.URL = server.URL + "/modelcard/3f7b2c82"
	cfg.Runs = 5

	inspector, err := NewInspector("")
	require.NoError(t, err)

	runner := NewRunner(cfg,
		WithFetcher(http.NewClient()),
		WithInspector(inspector),
		WithReporter(NewReporter(WithWriter(io.Discard))),
	)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Records, 5)
	assert.Zero(t, result.Failed)

	for _, r := range result.Records {
		assert.Greater(t, r.ResponseTimeMs, 0.0)
		assert.Greater(t, r.TCPHandshakeMs, 0.0)
		assert.GreaterOrEqual(t, r.TTFBMs, r.PrepareMs)
		assert.InDelta(t, 4.0, r.ResponseSizeKB, 0.001)
	}
	assert.Len(t, readLines(t, result.CSVPath), 6)
}

func TestRunner_RateLimited(t *testing.T) {
	f := &fakeFetcher{t: t}
	base := t.TempDir()
	cfg := DefaultConfig()
	cfg.BaseDir = base
	cfg.TempDir = t.TempDir()
	cfg.Runs = 3
	cfg.Rate = 20

	runner := NewRunner(cfg, WithFetcher(f), WithReporter(NewReporter(WithWriter(io.Discard))))

	start := time.Now()
	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	// burst of 1 at 20/s: the 2nd and 3rd requests wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRunner_Non2xxIsRecordedNotFailed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fakeFetcher{t: t, body: "unavailable", timing: http.Timing{
		Total:      5 * time.Millisecond,
		TTFB:       4 * time.Millisecond,
		Size:       2048,
		StatusCode: 503,
	}}
	runner, _, _ := newTestRunner(t, f, io.Discard, WithLogger(zap.New(core)))

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Failed)
	assert.Len(t, result.Records, 100)
	assert.Equal(t, 100, logs.FilterMessage("non-2xx response recorded").Len())
	assert.Zero(t, logs.FilterMessage("request failed").Len())
}
