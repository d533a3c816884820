package zuora

import "github.com/rayjohnson/zuora/pkg/soap"

// Session holds the opaque token returned by a successful login. It lives
// in memory only and is replaced wholesale on each re-authentication.
type Session struct {
	// Key is the opaque session token attached to every subsequent call.
	Key string

	// ServerURL is the instance URL the login response advertised.
	ServerURL string

	// Active reports whether the session is usable.
	Active bool
}

func newSession(result *soap.LoginResult) *Session {
	return &Session{
		Key:       result.Session,
		ServerURL: result.ServerURL,
		Active:    result.Session != "",
	}
}
