package client

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Hint is what a UI may show about a token: who it claims to be and when it
// claims to expire. It is decoded without checking the signature.
type Hint struct {
	UserID    int64
	Role      string
	ExpiresAt time.Time
}

type hintClaims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// DecodeHint reads the token payload without verifying it.
func DecodeHint(token string) (Hint, bool) {
	var c hintClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Hint{}, false
	}
	h := Hint{UserID: c.UserID, Role: c.Role}
	if c.ExpiresAt != nil {
		h.ExpiresAt = c.ExpiresAt.Time
	}
	return h, true
}

// Expired reports whether the claimed expiry has passed. A token without exp
// counts as expired.
func (h Hint) Expired(now time.Time) bool {
	return h.ExpiresAt.IsZero() || !now.Before(h.ExpiresAt)
}

// ExpiringSoon reports whether the token expires within d.
func (h Hint) ExpiringSoon(now time.Time, d time.Duration) bool {
	return h.Expired(now.Add(d))
}

// IsLikelyValid is a cheap pre-flight check: three segments and an unexpired
// claim. The server may still reject the token.
func IsLikelyValid(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	h, ok := DecodeHint(token)
	return ok && !h.Expired(now)
}
