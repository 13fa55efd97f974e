package hosepipe

import "net/http"

// Authenticator attaches credentials to an outgoing request before it is
// sent. Implementations mutate the request (headers, signatures) and report
// an error only if credentials cannot be produced.
type Authenticator interface {
	Authenticate(req *http.Request) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(req *http.Request) error

// Authenticate calls f(req).
func (f AuthenticatorFunc) Authenticate(req *http.Request) error {
	return f(req)
}

// BearerToken returns an Authenticator that sets a Bearer Authorization
// header.
func BearerToken(token string) Authenticator {
	return AuthenticatorFunc(func(req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	})
}

// BasicAuth returns an Authenticator that sets HTTP basic credentials.
func BasicAuth(username, password string) Authenticator {
	return AuthenticatorFunc(func(req *http.Request) error {
		req.SetBasicAuth(username, password)
		return nil
	})
}
