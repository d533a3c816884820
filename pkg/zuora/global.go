package zuora

import (
	"context"
	"errors"
	"sync"

	"github.com/beevik/etree"

	"github.com/rayjohnson/zuora/pkg/soap"
)

// ErrNotConfigured is returned by the package-level call surface before
// Configure has been called.
var ErrNotConfigured = errors.New("zuora: not configured")

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Configure replaces the package default client with one built from cfg.
// Programs that talk to a single Zuora tenant can use the package-level
// functions below instead of carrying a *Client around; programs with
// multiple tenants or environments should construct clients with New.
func Configure(cfg Config) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultClient = New(cfg)
}

// Default returns the package default client, or nil before Configure.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultClient
}

// Authenticate logs in on the default client.
func Authenticate(ctx context.Context) error {
	c := Default()
	if c == nil {
		return ErrNotConfigured
	}
	return c.Authenticate(ctx)
}

// Authenticated reports the default client's session state. It is false
// before Configure.
func Authenticated() bool {
	c := Default()
	return c != nil && c.Authenticated()
}

// Request dispatches an operation on the default client.
func Request(ctx context.Context, operation string, fields []Field, opts ...CallOption) (*soap.ResponseEnvelope, error) {
	c := Default()
	if c == nil {
		return nil, ErrNotConfigured
	}
	return c.Call(ctx, operation, fields, opts...)
}

// RequestWithBody dispatches an operation with a literal body builder.
func RequestWithBody(ctx context.Context, operation string, build func(op *etree.Element)) (*soap.ResponseEnvelope, error) {
	return Request(ctx, operation, nil, WithBody(build))
}

// Sandbox switches the default client to the sandbox endpoint.
func Sandbox() error {
	c := Default()
	if c == nil {
		return ErrNotConfigured
	}
	c.Sandbox()
	return nil
}

// Production switches the default client to the production endpoint.
func Production() error {
	c := Default()
	if c == nil {
		return ErrNotConfigured
	}
	c.Production()
	return nil
}

// LastRequest returns the default client's most recent request body.
func LastRequest() []byte {
	c := Default()
	if c == nil {
		return nil
	}
	return c.LastRequest()
}
