// Package httpx owns the single http.Client used for every outbound call to
// the third-party services, so one timeout setting governs them all.
package httpx

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 30 * time.Second

var externalHTTPClient = &http.Client{
	Timeout: defaultExternalHTTPTimeout,
}

// Client returns the shared external HTTP client.
func Client() *http.Client {
	return externalHTTPClient
}

// ConfigureExternalHTTPClient applies the configured timeout in seconds and
// returns the effective value. Zero or negative keeps the default.
func ConfigureExternalHTTPClient(seconds int) time.Duration {
	timeout := defaultExternalHTTPTimeout
	if seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}
	externalHTTPClient.Timeout = timeout
	return timeout
}
