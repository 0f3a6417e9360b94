package http

import (
	"math"
	"time"
)

// Timing holds the checkpoints of one request, each measured from the moment
// the request started. A checkpoint that was never reached stays zero.
type Timing struct {
	Total       time.Duration
	DNSLookup   time.Duration
	Connect     time.Duration
	TTFB        time.Duration
	PreTransfer time.Duration

	// Size is the number of body bytes received.
	Size int64

	// StatusCode is zero when no response arrived.
	StatusCode int
}

func (t *Timing) TotalSeconds() float64       { return t.Total.Seconds() }
func (t *Timing) DNSLookupSeconds() float64   { return t.DNSLookup.Seconds() }
func (t *Timing) ConnectSeconds() float64     { return t.Connect.Seconds() }
func (t *Timing) TTFBSeconds() float64        { return t.TTFB.Seconds() }
func (t *Timing) PreTransferSeconds() float64 { return t.PreTransfer.Seconds() }

func (t *Timing) IsSuccess() bool {
	return t.StatusCode >= 200 && t.StatusCode < 300
}

// FromSeconds builds a Timing from raw seconds and a byte count, the shape a
// command-line client such as curl reports.
func FromSeconds(total, dns, connect, ttfb, pretransfer float64, size int64) *Timing {
	return &Timing{
		Total:       secondsToDuration(total),
		DNSLookup:   secondsToDuration(dns),
		Connect:     secondsToDuration(connect),
		TTFB:        secondsToDuration(ttfb),
		PreTransfer: secondsToDuration(pretransfer),
		Size:        size,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
