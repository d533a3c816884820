// Package transport implements the HTTPS POST transport for SOAP calls,
// with request retention for debugging and credential-redacted logging.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rayjohnson/zuora/pkg/soap"
)

// Config contains transport configuration.
type Config struct {
	Timeout         time.Duration
	IdleConnTimeout time.Duration

	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool

	// Log enables debug logging of request and response bodies. Password
	// elements are redacted before anything reaches the logger.
	Log    bool
	Logger *slog.Logger
}

// DefaultConfig returns a default transport configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		IdleConnTimeout: 90 * time.Second,
	}
}

// Client posts SOAP envelopes to an endpoint. It retains the serialized
// bytes of the most recent request for inspection via LastRequest.
type Client struct {
	client *http.Client
	config *Config
	logger *slog.Logger

	mu          sync.Mutex
	lastRequest []byte
}

// New creates a transport client.
func New(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	httpTransport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
		IdleConnTimeout:     config.IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client: &http.Client{
			Transport: httpTransport,
			Timeout:   config.Timeout,
		},
		config: config,
		logger: logger,
	}
}

// Send posts a SOAP envelope to the endpoint and returns the response body.
//
// HTTP 500 responses are returned without error: SOAP 1.1 faults ride on
// status 500 and the caller decodes them from the body. Any other non-2xx
// status is a transport error.
func (c *Client) Send(ctx context.Context, endpoint string, body []byte, soapAction string) ([]byte, error) {
	c.mu.Lock()
	c.lastRequest = append([]byte(nil), body...)
	c.mu.Unlock()

	requestID := uuid.New().String()
	if c.config.Log {
		c.logger.Debug("sending request",
			"request_id", requestID,
			"endpoint", endpoint,
			"body", string(soap.RedactPasswords(body)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("User-Agent", "go-zuora/1.0")
	req.Header.Set("SOAPAction", `"`+soapAction+`"`)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if c.config.Log {
		c.logger.Debug("received response",
			"request_id", requestID,
			"status", resp.StatusCode,
			"body", string(soap.RedactPasswords(responseBody)))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return responseBody, nil
	case resp.StatusCode == http.StatusInternalServerError:
		// Fault envelope; the caller decodes it.
		return responseBody, nil
	default:
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(responseBody))
	}
}

// LastRequest returns a copy of the most recently transmitted request body,
// or nil if nothing has been sent.
func (c *Client) LastRequest() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastRequest == nil {
		return nil
	}
	return append([]byte(nil), c.lastRequest...)
}
