// Package zuora is a client for the Zuora billing SOAP API.
//
// The client holds credentials and environment selection, performs the
// login handshake lazily, attaches the resulting session token to every
// call, and translates transport and SOAP failures into the Fault type.
// Operations other than login are dispatched generically by name against
// the bundled WSDL.
package zuora

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/beevik/etree"

	"github.com/rayjohnson/zuora/pkg/soap"
	"github.com/rayjohnson/zuora/pkg/transport"
	"github.com/rayjohnson/zuora/pkg/wsdl"
)

// The two fixed service endpoints. Environment selection switches between
// them; nothing else about the client changes.
const (
	ProductionEndpoint = "https://www.zuora.com/apps/services/a/38.0"
	SandboxEndpoint    = "https://apisandbox.zuora.com/apps/services/a/38.0"
)

//go:embed zuora.a.38.0.wsdl
var wsdlDocument []byte

// Config holds client configuration. Credentials are only validated by the
// remote service at login time.
type Config struct {
	Username string
	Password string

	// Sandbox selects the sandbox endpoint instead of production.
	Sandbox bool

	// Endpoint overrides the environment-derived endpoint URL. Intended
	// for tests and private-cloud instances.
	Endpoint string

	// Log enables debug logging of redacted request/response bodies.
	Log    bool
	Logger *slog.Logger
}

// Field is one child element of an operation body. Fields serialize in
// slice order.
type Field struct {
	Name  string
	Value string
}

// Client is an authenticated Zuora SOAP API client.
//
// A Client is safe for concurrent use: one mutex guards the session,
// endpoint, and cached transport. The session check and header snapshot
// happen under the lock; network I/O does not.
type Client struct {
	mu       sync.Mutex
	cfg      Config
	endpoint string
	session  *Session
	tr       *transport.Client
	defs     *wsdl.Definitions
}

// New creates a client. The transport is built lazily on first use.
func New(cfg Config) *Client {
	endpoint := ProductionEndpoint
	if cfg.Sandbox {
		endpoint = SandboxEndpoint
	}
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
	}

	return &Client{
		cfg:      cfg,
		endpoint: endpoint,
	}
}

// Sandbox switches the client to the sandbox endpoint. The cached transport
// is discarded so the next call cannot reach the previous environment.
func (c *Client) Sandbox() {
	c.setEndpoint(SandboxEndpoint)
}

// Production switches the client to the production endpoint, discarding any
// cached transport.
func (c *Client) Production() {
	c.setEndpoint(ProductionEndpoint)
}

func (c *Client) setEndpoint(endpoint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = endpoint
	c.tr = nil
}

// Endpoint returns the currently selected endpoint URL.
func (c *Client) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoint
}

// WSDL returns the parsed service description, parsing the bundled document
// on first use.
func (c *Client) WSDL() (*wsdl.Definitions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.defs == nil {
		defs, err := wsdl.ParseBytes(wsdlDocument)
		if err != nil {
			return nil, err
		}
		c.defs = defs
	}
	return c.defs, nil
}

// transportLocked returns the cached transport, building it if an endpoint
// switch discarded it. Callers must hold c.mu.
func (c *Client) transportLocked() *transport.Client {
	if c.tr == nil {
		// Certificate verification is disabled to match the behavior
		// the hosted endpoints were historically called with.
		c.tr = transport.New(&transport.Config{
			Timeout:            transport.DefaultConfig().Timeout,
			IdleConnTimeout:    transport.DefaultConfig().IdleConnTimeout,
			InsecureSkipVerify: true,
			Log:                c.cfg.Log,
			Logger:             c.cfg.Logger,
		})
	}
	return c.tr
}

// Authenticated reports whether an active session exists. It is false, not
// an error, before the first successful login.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.Active
}

// Session returns the current session, or nil before login.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Authenticate performs a fresh login regardless of current state and
// replaces any prior session. Transport failures and SOAP faults are
// returned as *Fault with the underlying message preserved.
//
// The login body serializes username before password; the remote API
// rejects the reverse order.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	username, password := c.cfg.Username, c.cfg.Password
	tr := c.transportLocked()
	endpoint := c.endpoint
	c.mu.Unlock()

	req := soap.NewRequest("login")
	req.AddField("username", username)
	req.AddField("password", password)

	body, err := req.Bytes()
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}

	respBody, err := tr.Send(ctx, endpoint, body, "")
	if err != nil {
		return transportFault(err)
	}

	env, err := soap.DecodeEnvelope(respBody)
	if err != nil {
		return err
	}
	if env.Body.Fault != nil {
		return soapFault(env.Body.Fault)
	}

	result, err := soap.DecodeLoginResult(env.Body.Content)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.session = newSession(result)
	c.mu.Unlock()

	return nil
}

type callOptions struct {
	body func(*etree.Element)
}

// CallOption customizes a single dispatched call.
type CallOption func(*callOptions)

// WithBody supplies a literal body builder. The callback receives the
// operation element and fully replaces any declarative fields, for payloads
// the flat field form cannot express.
func WithBody(build func(op *etree.Element)) CallOption {
	return func(o *callOptions) {
		o.body = build
	}
}

// Call dispatches a named operation with the session header attached,
// authenticating first if no active session exists. Login always completes
// before the requested call goes out.
//
// The returned envelope's body content is the raw operation response;
// callers decode operation-specific result types themselves. Transport
// failures and SOAP faults come back as *Fault; there is no automatic
// retry beyond the implicit login.
func (c *Client) Call(ctx context.Context, operation string, fields []Field, opts ...CallOption) (*soap.ResponseEnvelope, error) {
	defs, err := c.WSDL()
	if err != nil {
		return nil, err
	}
	if !defs.HasOperation(operation) {
		return nil, fmt.Errorf("unknown operation %q", operation)
	}

	if !c.Authenticated() {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	key := c.session.Key
	tr := c.transportLocked()
	endpoint := c.endpoint
	c.mu.Unlock()

	var options callOptions
	for _, opt := range opts {
		opt(&options)
	}

	req := soap.NewRequest(operation)
	req.SetSessionHeader(key)
	if options.body != nil {
		req.ClearBody()
		options.body(req.Operation())
	} else {
		for _, f := range fields {
			req.AddField(f.Name, f.Value)
		}
	}

	body, err := req.Bytes()
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", operation, err)
	}

	respBody, err := tr.Send(ctx, endpoint, body, "")
	if err != nil {
		return nil, transportFault(err)
	}

	env, err := soap.DecodeEnvelope(respBody)
	if err != nil {
		return nil, err
	}
	if env.Body.Fault != nil {
		return nil, soapFault(env.Body.Fault)
	}

	return env, nil
}

// LastRequest returns the serialized body of the most recently transmitted
// request, or nil if nothing has been sent yet.
func (c *Client) LastRequest() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tr == nil {
		return nil
	}
	return c.tr.LastRequest()
}
