package analysis

// Comparison is one row of a side-by-side comparison of runs
type Comparison struct {
	Label        string  `json:"label"`
	Requests     int     `json:"requests"`
	Failed       int     `json:"failed"`
	MeanMs       float64 `json:"mean_ms"`
	StdDevMs     float64 `json:"stddev_ms"`
	P95Ms        float64 `json:"p95_ms"`
	MeanSizeKB   float64 `json:"mean_size_kb"`
	DeltaMeanPct float64 `json:"delta_mean_pct"` // relative to the first run
}

// Compare lines up response time and size across runs, using the first
// summary as the baseline.
func Compare(summaries []*Summary) []Comparison {
	out := make([]Comparison, 0, len(summaries))
	var baseline float64

	for i, s := range summaries {
		c := Comparison{Label: s.Source, Requests: s.Requests, Failed: s.Failed}
		if rt := s.Column("response_time_ms"); rt != nil {
			c.MeanMs = rt.Mean
			c.StdDevMs = rt.StdDev
			c.P95Ms = rt.P95
		}
		if size := s.Column("response_size_kb"); size != nil {
			c.MeanSizeKB = size.Mean
		}

		if i == 0 {
			baseline = c.MeanMs
		} else if baseline > 0 {
			c.DeltaMeanPct = (c.MeanMs - baseline) / baseline * 100
		}
		out = append(out, c)
	}

	return out
}
