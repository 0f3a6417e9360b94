package analysis

import (
	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/mcbench/packages/bench"
)

const (
	// Values are recorded at 1/1000 of their unit: µs for ms columns,
	// thousandths of a KB for the size column.
	scale = 1000

	highestTrackable = 3_600_000_000
	sigFigs          = 3
)

// ColumnStats summarizes one CSV column
type ColumnStats struct {
	Name   string  `json:"name"`
	Count  int64   `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// Summary holds the statistics of one run
type Summary struct {
	Source   string        `json:"source"`
	Requests int           `json:"requests"`
	Failed   int           `json:"failed"`
	Columns  []ColumnStats `json:"columns"`
}

// Column returns the stats for name, or nil.
func (s *Summary) Column(name string) *ColumnStats {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i]
		}
	}
	return nil
}

// Summarize computes per-column statistics. A request whose total time is
// zero never reached the server and is counted as failed.
func Summarize(source string, records []bench.Record) *Summary {
	histograms := make([]*hdrhistogram.Histogram, len(bench.Columns))
	for i := range histograms {
		histograms[i] = hdrhistogram.New(1, highestTrackable, sigFigs)
	}

	summary := &Summary{Source: source, Requests: len(records)}

	for _, r := range records {
		if r.ResponseTimeMs == 0 {
			summary.Failed++
		}
		for i, v := range r.Values() {
			// toScaled clamps into [0, highestTrackable], which RecordValue accepts
			_ = histograms[i].RecordValue(toScaled(v))
		}
	}

	for i, h := range histograms {
		summary.Columns = append(summary.Columns, ColumnStats{
			Name:   bench.Columns[i],
			Count:  h.TotalCount(),
			Min:    fromScaled(h.Min()),
			Max:    fromScaled(h.Max()),
			Mean:   h.Mean() / scale,
			StdDev: h.StdDev() / scale,
			P50:    fromScaled(h.ValueAtQuantile(50)),
			P95:    fromScaled(h.ValueAtQuantile(95)),
			P99:    fromScaled(h.ValueAtQuantile(99)),
		})
	}

	return summary
}

func toScaled(v float64) int64 {
	s := int64(v*scale + 0.5)
	if s < 0 {
		s = 0
	}
	if s > highestTrackable {
		s = highestTrackable
	}
	return s
}

func fromScaled(v int64) float64 {
	return float64(v) / scale
}
