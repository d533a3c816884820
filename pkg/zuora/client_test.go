package zuora

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionKey = "sess-test-0042"

// fakeZuora answers login with a session key and any other operation with
// an empty result, recording every request body it sees.
type fakeZuora struct {
	mu       sync.Mutex
	requests [][]byte

	// failLogin makes login return a SOAP fault.
	failLogin bool
}

func (f *fakeZuora) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, body)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")

	if bytes.Contains(body, []byte("<zns:login>")) {
		if f.failLogin {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body><soapenv:Fault><faultcode>fns:INVALID_LOGIN</faultcode><faultstring>invalid username or password</faultstring></soapenv:Fault></soapenv:Body></soapenv:Envelope>`))
			return
		}
		w.Write([]byte(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body><loginResponse xmlns="http://api.zuora.com/"><result><Session>` + testSessionKey + `</Session><ServerUrl>https://apisandbox.zuora.com/apps/services/a/38.0</ServerUrl></result></loginResponse></soapenv:Body></soapenv:Envelope>`))
		return
	}

	w.Write([]byte(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body><queryResponse xmlns="http://api.zuora.com/"><result><size>0</size><done>true</done></result></queryResponse></soapenv:Body></soapenv:Envelope>`))
}

func (f *fakeZuora) requestBodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, b := range f.requests {
		out[i] = string(b)
	}
	return out
}

func newTestClient(t *testing.T, fake *fakeZuora) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	return New(Config{
		Username: "u",
		Password: "p",
		Sandbox:  true,
		Endpoint: server.URL,
	})
}

func TestNew_EndpointSelection(t *testing.T) {
	assert.Equal(t, ProductionEndpoint, New(Config{}).Endpoint())
	assert.Equal(t, SandboxEndpoint, New(Config{Sandbox: true}).Endpoint())
	assert.Equal(t, "https://example.test/soap", New(Config{Endpoint: "https://example.test/soap"}).Endpoint())
}

func TestEnvironmentSwitch_DiscardsTransport(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)

	// Force the transport to be built
	require.NoError(t, client.Authenticate(context.Background()))
	client.mu.Lock()
	require.NotNil(t, client.tr)
	client.mu.Unlock()

	client.Production()
	assert.Equal(t, ProductionEndpoint, client.Endpoint())
	client.mu.Lock()
	assert.Nil(t, client.tr)
	client.mu.Unlock()

	client.Sandbox()
	assert.Equal(t, SandboxEndpoint, client.Endpoint())
}

func TestEnvironmentSwitch_NextCallTargetsNewEndpoint(t *testing.T) {
	staleFake := &fakeZuora{}
	staleServer := httptest.NewServer(staleFake)
	t.Cleanup(staleServer.Close)

	freshFake := &fakeZuora{}
	freshServer := httptest.NewServer(freshFake)
	t.Cleanup(freshServer.Close)

	client := New(Config{Username: "u", Password: "p", Endpoint: staleServer.URL})
	_, err := client.Call(context.Background(), "query", []Field{{Name: "queryString", Value: "select Id from Account"}})
	require.NoError(t, err)
	require.NotEmpty(t, staleFake.requestBodies())

	// Credentials survive the swap; only the endpoint moves.
	client.setEndpoint(freshServer.URL)

	before := len(staleFake.requestBodies())
	_, err = client.Call(context.Background(), "query", []Field{{Name: "queryString", Value: "select Id from Account"}})
	require.NoError(t, err)

	assert.Len(t, staleFake.requestBodies(), before, "stale endpoint must receive no further requests")
	assert.NotEmpty(t, freshFake.requestBodies())
}

func TestAuthenticate_Lifecycle(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)

	assert.False(t, client.Authenticated())
	assert.Nil(t, client.Session())

	require.NoError(t, client.Authenticate(context.Background()))

	assert.True(t, client.Authenticated())
	require.NotNil(t, client.Session())
	assert.Equal(t, testSessionKey, client.Session().Key)
	assert.True(t, client.Session().Active)
}

func TestAuthenticate_LoginFieldOrderOnWire(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)

	require.NoError(t, client.Authenticate(context.Background()))

	bodies := fake.requestBodies()
	require.Len(t, bodies, 1)

	userIdx := strings.Index(bodies[0], "<zns:username>")
	passIdx := strings.Index(bodies[0], "<zns:password>")
	require.NotEqual(t, -1, userIdx)
	require.NotEqual(t, -1, passIdx)
	assert.Less(t, userIdx, passIdx)
}

func TestCall_ImplicitLoginAndSessionHeader(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)

	resp, err := client.Call(context.Background(), "query", []Field{
		{Name: "queryString", Value: "select Id, Name from Account"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body.Content), "queryResponse")

	bodies := fake.requestBodies()
	require.Len(t, bodies, 2, "login must be dispatched before the operation")

	assert.Contains(t, bodies[0], "<zns:login>")
	assert.Contains(t, bodies[1], "<zns:query>")
	assert.Contains(t, bodies[1], "<zns:Session>"+testSessionKey+"</zns:Session>")
	assert.True(t, client.Authenticated())
}

func TestCall_SessionHeaderOnEveryCall(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)
	ctx := context.Background()

	require.NoError(t, client.Authenticate(ctx))

	for i := 0; i < 3; i++ {
		_, err := client.Call(ctx, "query", []Field{{Name: "queryString", Value: "select Id from Account"}})
		require.NoError(t, err)
	}

	bodies := fake.requestBodies()
	require.Len(t, bodies, 4)
	for _, body := range bodies[1:] {
		assert.Contains(t, body, "<zns:Session>"+testSessionKey+"</zns:Session>")
	}
}

func TestCall_UnknownOperation(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)

	_, err := client.Call(context.Background(), "launchMissiles", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
	assert.Empty(t, fake.requestBodies(), "no network I/O for unknown operations")
}

func TestCall_WithBody(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)

	_, err := client.Call(context.Background(), "create", nil, WithBody(func(op *etree.Element) {
		obj := op.CreateElement("zns:zObjects")
		obj.CreateAttr("xsi:type", "ons:Account")
		obj.CreateElement("ons:Name").SetText("ACME Corp")
	}))
	require.NoError(t, err)

	bodies := fake.requestBodies()
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[1], "<ons:Name>ACME Corp</ons:Name>")
	assert.Contains(t, bodies[1], "<zns:Session>"+testSessionKey+"</zns:Session>")
}

func TestAuthenticate_SOAPFault(t *testing.T) {
	fake := &fakeZuora{failLogin: true}
	client := newTestClient(t, fake)

	err := client.Authenticate(context.Background())
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, "fns:INVALID_LOGIN", fault.Code)
	assert.Equal(t, "invalid username or password", fault.Message)
	assert.False(t, client.Authenticated())
}

func TestCall_FaultDuringImplicitLogin(t *testing.T) {
	fake := &fakeZuora{failLogin: true}
	client := newTestClient(t, fake)

	_, err := client.Call(context.Background(), "query", nil)
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Contains(t, fault.Message, "invalid username or password")
}

func TestAuthenticate_TransportFailure(t *testing.T) {
	server := httptest.NewServer(&fakeZuora{})
	server.Close()

	client := New(Config{Username: "u", Password: "p", Endpoint: server.URL})

	err := client.Authenticate(context.Background())
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Empty(t, fault.Code)
	assert.NotEmpty(t, fault.Message)
	assert.NotNil(t, errors.Unwrap(fault), "transport faults must preserve the cause")
}

func TestLastRequest(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)

	assert.Nil(t, client.LastRequest())

	require.NoError(t, client.Authenticate(context.Background()))

	last := client.LastRequest()
	require.NotNil(t, last)
	assert.Contains(t, string(last), "<zns:login>")

	_, err := client.Call(context.Background(), "query", []Field{{Name: "queryString", Value: "select Id from Account"}})
	require.NoError(t, err)
	assert.Contains(t, string(client.LastRequest()), "<zns:query>")
}

func TestWSDL(t *testing.T) {
	client := New(Config{})

	defs, err := client.WSDL()
	require.NoError(t, err)
	assert.True(t, defs.HasOperation("login"))
	assert.True(t, defs.HasOperation("query"))
	assert.True(t, defs.HasOperation("subscribe"))
	assert.Equal(t, "http://api.zuora.com/", defs.TargetNamespace())
}

func TestReauthenticate_ReplacesSession(t *testing.T) {
	fake := &fakeZuora{}
	client := newTestClient(t, fake)
	ctx := context.Background()

	require.NoError(t, client.Authenticate(ctx))
	first := client.Session()

	require.NoError(t, client.Authenticate(ctx))
	second := client.Session()

	assert.NotSame(t, first, second, "re-authentication replaces the session value")
	assert.Equal(t, first.Key, second.Key)
}
