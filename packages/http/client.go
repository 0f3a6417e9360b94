package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	neturl "net/url"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultUserAgent is sent when no User-Agent default header is configured
	DefaultUserAgent = "mcbench/1.0"
)

type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	defaultHeaders map[string]string
	now            func() time.Time
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: false,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: map[string]string{"User-Agent": DefaultUserAgent},
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Every request opens its own connection so DNS and connect are measured
	// on each iteration.
	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DisableKeepAlives: true,
	}

	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	c.httpClient = &http.Client{
		Transport:     transport,
		Timeout:       c.timeout,
		CheckRedirect: redirectPolicy,
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// Fetch issues a GET request, streams the response body into body and
// reports the timing checkpoints seen along the way. All checkpoints are
// measured from the start of the request. On a transport error the partially
// filled Timing is returned together with the error.
func (c *Client) Fetch(ctx context.Context, url string, body io.Writer) (*Timing, error) {
	timing := &Timing{}

	if err := ValidateURL(url); err != nil {
		return timing, err
	}

	start := c.now()
	since := func() time.Duration { return c.now().Sub(start) }

	trace := &httptrace.ClientTrace{
		DNSDone: func(httptrace.DNSDoneInfo) {
			timing.DNSLookup = since()
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				timing.Connect = since()
			}
		},
		GotConn: func(httptrace.GotConnInfo) {
			timing.PreTransfer = since()
		},
		GotFirstResponseByte: func() {
			timing.TTFB = since()
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, url, nil)
	if err != nil {
		return timing, err
	}

	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		timing.Total = since()
		return timing, err
	}
	defer resp.Body.Close()

	timing.StatusCode = resp.StatusCode

	n, err := io.Copy(body, resp.Body)
	timing.Size = n
	timing.Total = since()
	if err != nil {
		return timing, fmt.Errorf("reading response body: %w", err)
	}

	return timing, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
