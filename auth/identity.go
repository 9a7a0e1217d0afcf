// Package auth implements talenthub's authentication layer: the token codec,
// extraction of bearer credentials from requests, the session resolver and its
// middleware, token revocation, and the register/login/refresh/logout flows.
//
// Authorization decisions (who may touch which job or application) are not made
// here; see package guard.
package auth

import "time"

// Role is the account kind carried in every token.
type Role string

const (
	RoleTalent  Role = "talent"
	RoleCompany Role = "company"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleTalent || r == RoleCompany
}

// Identity is the result of a successfully verified credential.
// It is recomputed for every request and never stored.
type Identity struct {
	UserID    int64
	Role      Role
	TokenID   string    // jti, used for revocation
	ExpiresAt time.Time // token expiry, bounds the revocation entry TTL
}

// User is a row of the users table.
type User struct {
	ID           int64     `json:"id"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	UserType     Role      `json:"userType"`
	CreatedAt    time.Time `json:"createdAt"`
}
