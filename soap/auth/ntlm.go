package auth

import (
	"net/http"

	"github.com/Azure/go-ntlmssp"
)

// NTLMAuth implements NTLM authentication.
type NTLMAuth struct {
	creds Credentials
}

// NewNTLMAuth creates a new NTLM authentication handler.
func NewNTLMAuth(creds Credentials) *NTLMAuth {
	return &NTLMAuth{creds: creds}
}

// Name returns the authentication scheme name.
func (a *NTLMAuth) Name() string {
	return "NTLM"
}

// Transport wraps an http.RoundTripper with NTLM authentication.
// Uses github.com/Azure/go-ntlmssp for the NTLM handshake.
//
// The negotiator reads credentials from the request's Basic Authorization
// header, so the chain sets that header first. Servers that never issue an
// NTLM challenge still authenticate, because the negotiator falls back to
// plain Basic.
func (a *NTLMAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &basicTransport{
		base: ntlmssp.Negotiator{RoundTripper: base},
		user: a.creds.authority(),
		pass: a.creds.Password,
	}
}
