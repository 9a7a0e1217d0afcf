package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
)

var errRevoked = errors.New("token has been revoked")

// revocationCheckTimeout bounds the Redis lookup done for every authenticated request.
const revocationCheckTimeout = 250 * time.Millisecond

// Resolver turns an inbound request into an Identity.
type Resolver struct {
	codec   *Codec
	revoker Revoker
}

// NewResolver builds a resolver. A nil revoker behaves like NopRevoker.
func NewResolver(codec *Codec, revoker Revoker) *Resolver {
	if revoker == nil {
		revoker = NopRevoker{}
	}
	return &Resolver{codec: codec, revoker: revoker}
}

// Resolve returns the identity behind the request's bearer token, or (nil, false)
// when the header is absent, malformed, expired, forged or revoked.
func (r *Resolver) Resolve(req *http.Request) (*Identity, bool) {
	raw, ok := ExtractBearer(req.Header.Get("Authorization"))
	if !ok {
		return nil, false
	}
	id, err := r.ResolveToken(req.Context(), raw, AccessToken)
	if err != nil {
		log.Printf("session: %s %s rejected: %v", req.Method, req.URL.Path, err)
		return nil, false
	}
	return id, true
}

// ResolveToken verifies raw as a token of the given kind and checks revocation.
// A failing revocation lookup is logged and the token is accepted.
func (r *Resolver) ResolveToken(ctx context.Context, raw string, kind TokenKind) (*Identity, error) {
	id, err := r.codec.Verify(raw, kind)
	if err != nil {
		return nil, err
	}
	checkCtx, cancel := context.WithTimeout(ctx, revocationCheckTimeout)
	defer cancel()
	revoked, err := r.revoker.IsRevoked(checkCtx, id.TokenID)
	if err != nil {
		log.Printf("session: revocation check failed for user %d, accepting token: %v", id.UserID, err)
		return id, nil
	}
	if revoked {
		return nil, &VerifyError{Reason: ReasonUnknown, Err: errRevoked}
	}
	return id, nil
}
