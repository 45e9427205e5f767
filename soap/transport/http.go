// Package transport handles HTTP/HTTPS communication with the iControl
// portal.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrUnauthorized is returned when the portal responds with 401 Unauthorized.
// Use errors.Is(err, ErrUnauthorized) to check for authentication failures.
var ErrUnauthorized = errors.New("transport: authentication failed (401 Unauthorized)")

const (
	// ContentTypeSOAP is the content type for SOAP 1.1 messages.
	ContentTypeSOAP = "text/xml; charset=utf-8"

	// HeaderSOAPAction is the SOAP 1.1 action header. The portal routes on
	// the request path, but rejects calls missing the header outright.
	HeaderSOAPAction = "SOAPAction"

	// DefaultTimeout is the default HTTP request timeout. WSDL fetches on a
	// busy appliance routinely take tens of seconds.
	DefaultTimeout = 90 * time.Second

	// defaultBufferSize is the initial size for pooled buffers. Sized for
	// WSDL documents, which dominate response volume.
	defaultBufferSize = 64 * 1024 // 64KB
)

// bufferPool is a pool of reusable bytes.Buffer to reduce allocations.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
	},
}

// getBuffer returns a buffer from the pool.
func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer returns a buffer to the pool after resetting it.
func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}

// readAllPooled reads from r using a pooled buffer and returns a copy of the data.
func readAllPooled(r io.Reader) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	_, err := buf.ReadFrom(r)
	if err != nil {
		return nil, err
	}

	// Return a copy since buf will be reused
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// Response is a portal reply that reached the HTTP layer intact. A 500
// status is a normal outcome here: SOAP 1.1 faults ride on 500, so the
// body must reach the fault parser instead of being discarded as an error.
type Response struct {
	StatusCode int
	Body       []byte
}

// HTTPTransport handles HTTP/HTTPS communication with an appliance.
type HTTPTransport struct {
	client *http.Client
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// NewHTTPTransport creates a new HTTP transport with the given options.
func NewHTTPTransport(opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					// MinVersion: TLS 1.2; management interfaces on
					// supported BIG-IP versions all negotiate it.
					MinVersion: tls.VersionTLS12,
				},
				// NTLM requires persistent connections for the handshake,
				// and session-bound calls reuse the connection anyway.
				DisableKeepAlives:   false,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				MaxConnsPerHost:     5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithInsecureSkipVerify configures TLS to skip certificate verification.
// Appliances ship self-signed management certificates, so most deployments
// need this unless the certificate has been replaced.
func WithInsecureSkipVerify(skip bool) HTTPTransportOption {
	return func(t *HTTPTransport) {
		transport := t.ensureHTTPTransport()
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}
		transport.TLSClientConfig.InsecureSkipVerify = skip
	}
}

// WithTLSConfig sets a custom TLS configuration.
// NOTE: MinVersion is enforced to be at least TLS 1.2 for security.
func WithTLSConfig(cfg *tls.Config) HTTPTransportOption {
	return func(t *HTTPTransport) {
		transport := t.ensureHTTPTransport()
		// Enforce minimum TLS 1.2 regardless of user config
		if cfg.MinVersion < tls.VersionTLS12 {
			cfg.MinVersion = tls.VersionTLS12
		}
		transport.TLSClientConfig = cfg
	}
}

// WithProxy routes requests through the proxy settings of the environment
// (HTTPS_PROXY and friends). Off by default: management networks rarely
// route through the egress proxy.
func WithProxy() HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.ensureHTTPTransport().Proxy = http.ProxyFromEnvironment
	}
}

// ensureHTTPTransport ensures the client has an *http.Transport.
func (t *HTTPTransport) ensureHTTPTransport() *http.Transport {
	if t.client.Transport == nil {
		t.client.Transport = &http.Transport{}
	}
	transport, ok := t.client.Transport.(*http.Transport)
	if !ok {
		transport = &http.Transport{}
		t.client.Transport = transport
	}
	return transport
}

// Post sends a SOAP request and returns the response. Extra headers are
// applied after the standard ones, so callers can attach per-session
// headers without owning the request.
//
// Status handling: 200 and 500 pass through (500 carries SOAP faults);
// 401 maps to ErrUnauthorized; anything else is an error.
func (t *HTTPTransport) Post(ctx context.Context, url, action string, body []byte, extra http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", ContentTypeSOAP)
	req.Header.Set(HeaderSOAPAction, `"`+action+`"`)
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readAllPooled(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("transport: access denied (403 Forbidden)")
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusInternalServerError:
		return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
	default:
		return nil, fmt.Errorf("transport: HTTP %d: %s", resp.StatusCode, bodyPreview(respBody))
	}
}

// Get fetches a document from the appliance (WSDL retrieval and namespace
// discovery).
func (t *HTTPTransport) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readAllPooled(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("transport: access denied (403 Forbidden)")
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("transport: HTTP %d: %s", resp.StatusCode, bodyPreview(respBody))
	}

	return respBody, nil
}

// bodyPreview truncates a response body for inclusion in error messages.
func bodyPreview(body []byte) string {
	const max = 3000
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// Client returns the underlying HTTP client for advanced configuration.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

// CloseIdleConnections closes any idle connections in the transport.
// This is useful to force a fresh NTLM handshake for subsequent requests.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}
