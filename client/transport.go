package client

import "net/http"

// Transport attaches the stored token to every outbound request.
type Transport struct {
	Tokens *TokenStore
	// Base is the underlying RoundTripper. nil means http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper. The caller's request is not modified.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	header, ok := t.Tokens.AuthHeader()
	if !ok || req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", header)
	return base.RoundTrip(out)
}
