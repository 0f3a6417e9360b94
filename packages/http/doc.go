// Package http provides the instrumented HTTP client used by mcbench.
//
// It wraps the standard library's http package with:
//   - Per-request timing checkpoints (DNS, connect, pre-transfer, first byte, total)
//   - Configurable timeouts, redirects, proxy and TLS validation
//   - Streaming of the response body into a caller-supplied writer
package http
