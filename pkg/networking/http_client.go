// Package networking builds the *http.Client instances used to talk to
// OIDC identity providers and CouchDB nodes.
package networking

import (
	"net/http"
	"time"
)

// DefaultTimeout is the overall timeout applied to every outgoing request
// made by clients built through HTTPClientBuilder.
const DefaultTimeout = 30 * time.Second

// basicAuthTransport adds HTTP Basic authentication to every request.
type basicAuthTransport struct {
	transport http.RoundTripper
	username  string
	password  string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.SetBasicAuth(t.username, t.password)
	return t.transport.RoundTrip(cloned)
}

// HTTPClientBuilder provides a fluent interface for building the *http.Client
// instances the daemon uses for outbound calls.
type HTTPClientBuilder struct {
	timeout               time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	basicAuthUser         string
	basicAuthPassword     string
	useBasicAuth          bool
}

// NewHTTPClientBuilder returns a builder pre-populated with sane defaults.
func NewHTTPClientBuilder() *HTTPClientBuilder {
	return &HTTPClientBuilder{
		timeout:               DefaultTimeout,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 10 * time.Second,
	}
}

// WithTimeout overrides the overall request timeout.
func (b *HTTPClientBuilder) WithTimeout(d time.Duration) *HTTPClientBuilder {
	b.timeout = d
	return b
}

// WithBasicAuth configures every request issued by the built client to carry
// HTTP Basic credentials, used for all CouchDB endpoints.
func (b *HTTPClientBuilder) WithBasicAuth(username, password string) *HTTPClientBuilder {
	b.basicAuthUser = username
	b.basicAuthPassword = password
	b.useBasicAuth = true
	return b
}

// Build creates the configured *http.Client.
func (b *HTTPClientBuilder) Build() *http.Client {
	var transport http.RoundTripper = &http.Transport{
		TLSHandshakeTimeout:   b.tlsHandshakeTimeout,
		ResponseHeaderTimeout: b.responseHeaderTimeout,
	}

	if b.useBasicAuth {
		transport = &basicAuthTransport{
			transport: transport,
			username:  b.basicAuthUser,
			password:  b.basicAuthPassword,
		}
	}

	return &http.Client{
		Timeout:   b.timeout,
		Transport: transport,
	}
}
