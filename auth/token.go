package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/user/talenthub/config"
)

// TokenKind separates short-lived access tokens from refresh tokens.
// A token of one kind is never accepted where the other is expected.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// Claims is the JWT payload.
type Claims struct {
	UserID int64     `json:"uid"`
	Role   Role      `json:"role"`
	Kind   TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// Token is a freshly signed credential.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// FailureReason says why Verify rejected a token. It is for logs and server-side
// branching only; HTTP responses never reveal it.
type FailureReason int

const (
	ReasonUnknown FailureReason = iota
	ReasonMalformed
	ReasonExpired
	ReasonInvalidSignature
)

func (r FailureReason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed"
	case ReasonExpired:
		return "expired"
	case ReasonInvalidSignature:
		return "invalid-signature"
	default:
		return "unknown"
	}
}

// VerifyError is returned by Codec.Verify.
type VerifyError struct {
	Reason FailureReason
	Err    error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("token %s: %v", e.Reason, e.Err)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// ReasonOf extracts the failure reason from a Verify error.
func ReasonOf(err error) FailureReason {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ReasonUnknown
}

// Codec issues and verifies HS256 tokens.
type Codec struct {
	secret  []byte
	issuer  string
	access  time.Duration
	refresh time.Duration
	now     func() time.Time
}

// NewCodec builds a codec from the auth configuration.
// The secret length is re-checked here so a hand-built config cannot slip past config.LoadConfig.
func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if len(cfg.JWTSecret) < config.MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", config.MinSecretLength)
	}
	if cfg.AccessTokenDuration <= 0 || cfg.RefreshTokenDuration <= 0 {
		return nil, errors.New("token durations must be positive")
	}
	return &Codec{
		secret:  []byte(cfg.JWTSecret),
		issuer:  cfg.Issuer,
		access:  cfg.AccessTokenDuration,
		refresh: cfg.RefreshTokenDuration,
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Lifetime returns the configured lifetime for kind.
func (c *Codec) Lifetime(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return c.refresh
	}
	return c.access
}

// Issue signs a new token for the given subject.
func (c *Codec) Issue(userID int64, role Role, kind TokenKind) (Token, error) {
	if userID <= 0 || !role.Valid() {
		return Token{}, fmt.Errorf("cannot issue token for user %d with role %q", userID, role)
	}
	now := c.now()
	expiresAt := now.Add(c.Lifetime(kind))
	id := uuid.NewString()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Token{Value: signed, ID: id, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature, expiry, issuer and kind of raw.
// Every failure is a *VerifyError.
func (c *Codec) Verify(raw string, kind TokenKind) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, &VerifyError{Reason: classify(err), Err: err}
	}

	if claims.Kind != kind {
		return nil, &VerifyError{Reason: ReasonUnknown, Err: fmt.Errorf("expected %s token, got %q", kind, claims.Kind)}
	}
	if claims.UserID <= 0 || !claims.Role.Valid() || claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, &VerifyError{Reason: ReasonUnknown, Err: errors.New("token claims are incomplete")}
	}
	return &Identity{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func classify(err error) FailureReason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ReasonInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	default:
		return ReasonUnknown
	}
}
