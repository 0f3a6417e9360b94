package bench

import (
	"strconv"

	"github.com/abdul-hamid-achik/mcbench/packages/http"
)

// Columns is the CSV header, in row order.
var Columns = []string{
	"response_time_ms",
	"dns_lookup_ms",
	"tcp_handshake_ms",
	"ttfb_ms",
	"prepare_ms",
	"response_size_kb",
}

const (
	timePrecision = 5
	sizePrecision = 2
)

// Record is the measurement of a single request. Times are in
// milliseconds, size in kilobytes.
type Record struct {
	Seq            int
	ResponseTimeMs float64
	DNSLookupMs    float64
	TCPHandshakeMs float64
	TTFBMs         float64
	PrepareMs      float64
	ResponseSizeKB float64
}

// NewRecord converts raw client timings (seconds, bytes) into a Record.
func NewRecord(seq int, t *http.Timing) Record {
	if t == nil {
		t = &http.Timing{}
	}
	return Record{
		Seq:            seq,
		ResponseTimeMs: t.TotalSeconds() * 1000,
		DNSLookupMs:    t.DNSLookupSeconds() * 1000,
		TCPHandshakeMs: t.ConnectSeconds() * 1000,
		TTFBMs:         t.TTFBSeconds() * 1000,
		PrepareMs:      t.PreTransferSeconds() * 1000,
		ResponseSizeKB: float64(t.Size) / 1024,
	}
}

// Values returns the six measurements in column order.
func (r Record) Values() []float64 {
	return []float64{
		r.ResponseTimeMs,
		r.DNSLookupMs,
		r.TCPHandshakeMs,
		r.TTFBMs,
		r.PrepareMs,
		r.ResponseSizeKB,
	}
}

// Row formats the record as CSV fields: five decimals for times, two for size.
func (r Record) Row() []string {
	values := r.Values()
	row := make([]string, len(values))
	for i, v := range values {
		prec := timePrecision
		if i == len(values)-1 {
			prec = sizePrecision
		}
		row[i] = strconv.FormatFloat(v, 'f', prec, 64)
	}
	return row
}

// RecordFromValues is the inverse of Values.
func RecordFromValues(seq int, values []float64) Record {
	r := Record{Seq: seq}
	if len(values) != len(Columns) {
		return r
	}
	r.ResponseTimeMs = values[0]
	r.DNSLookupMs = values[1]
	r.TCPHandshakeMs = values[2]
	r.TTFBMs = values[3]
	r.PrepareMs = values[4]
	r.ResponseSizeKB = values[5]
	return r
}
