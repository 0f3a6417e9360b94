package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/mcbench/packages/analysis"
)

// DataDogExporter exports summaries to DataDog
type DataDogExporter struct {
	apiKey   string
	site     string // e.g., "datadoghq.com", "datadoghq.eu"
	endpoint string
	tags     []string
	prefix   string
	client   *http.Client
	now      func() time.Time
}

// DataDogOption is a functional option for DataDogExporter
type DataDogOption func(*DataDogExporter)

// WithDataDogAPIKey sets the DataDog API key
func WithDataDogAPIKey(apiKey string) DataDogOption {
	return func(d *DataDogExporter) {
		d.apiKey = apiKey
	}
}

// WithDataDogSite sets the DataDog site (e.g., "datadoghq.com", "datadoghq.eu")
func WithDataDogSite(site string) DataDogOption {
	return func(d *DataDogExporter) {
		d.site = site
	}
}

// WithDataDogEndpoint overrides the series URL derived from the site
func WithDataDogEndpoint(url string) DataDogOption {
	return func(d *DataDogExporter) {
		d.endpoint = url
	}
}

// WithDataDogTags sets additional tags for all metrics
func WithDataDogTags(tags []string) DataDogOption {
	return func(d *DataDogExporter) {
		d.tags = tags
	}
}

// WithDataDogPrefix sets a prefix for metric names
func WithDataDogPrefix(prefix string) DataDogOption {
	return func(d *DataDogExporter) {
		d.prefix = prefix
	}
}

// NewDataDogExporter creates a new DataDog metrics exporter
func NewDataDogExporter(opts ...DataDogOption) *DataDogExporter {
	d := &DataDogExporter{
		site:   "datadoghq.com",
		prefix: "mcbench",
		client: &http.Client{Timeout: 10 * time.Second},
		tags:   make([]string, 0),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.apiKey == "" {
		d.apiKey = os.Getenv("DD_API_KEY")
	}
	if d.endpoint == "" {
		d.endpoint = fmt.Sprintf("https://api.%s/api/v1/series", d.site)
	}

	return d
}

type datadogMetric struct {
	Metric string   `json:"metric"`
	Type   string   `json:"type"`
	Points [][]any  `json:"points"`
	Tags   []string `json:"tags,omitempty"`
}

type datadogPayload struct {
	Series []datadogMetric `json:"series"`
}

// Export sends the summary as DataDog series
func (d *DataDogExporter) Export(summary *analysis.Summary) error {
	if d.apiKey == "" {
		return fmt.Errorf("DataDog API key not configured")
	}

	now := float64(d.now().Unix())
	tags := append([]string{"run:" + summary.Source}, d.tags...)

	series := []datadogMetric{
		{Metric: d.metricName("requests.total"), Type: "count", Points: [][]any{{now, float64(summary.Requests)}}, Tags: tags},
		{Metric: d.metricName("requests.failed"), Type: "count", Points: [][]any{{now, float64(summary.Failed)}}, Tags: tags},
	}

	for _, c := range summary.Columns {
		name := d.metricName(strings.TrimSuffix(strings.TrimSuffix(c.Name, "_ms"), "_kb"))
		for _, stat := range []struct {
			suffix string
			value  float64
		}{
			{"mean", c.Mean},
			{"stddev", c.StdDev},
			{"min", c.Min},
			{"max", c.Max},
			{"p50", c.P50},
			{"p95", c.P95},
			{"p99", c.P99},
		} {
			series = append(series, datadogMetric{
				Metric: name + "." + stat.suffix,
				Type:   "gauge",
				Points: [][]any{{now, stat.value}},
				Tags:   tags,
			})
		}
	}

	return d.sendMetrics(series)
}

func (d *DataDogExporter) metricName(name string) string {
	return d.prefix + "." + name
}

func (d *DataDogExporter) sendMetrics(series []datadogMetric) error {
	jsonData, err := json.Marshal(datadogPayload{Series: series})
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	req, err := http.NewRequest("POST", d.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("DD-API-KEY", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("DataDog API returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Close closes the DataDog exporter
func (d *DataDogExporter) Close() error {
	return nil
}
