package auth

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/storefront/auth/authctx"
)

// Role is the coarse permission level of an account.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleSeller}

// ParseRole returns the role named by s. An empty string yields RoleUser;
// anything outside Roles is an error.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// In reports whether r is a member of set.
func (r Role) In(set ...Role) bool {
	return slices.Contains(set, r)
}

// Identity is the principal a session token asserts.
type Identity struct {
	AccountID string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// Session is a verified token together with the identity it carries.
type Session struct {
	Identity
	Token     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining returns how long the session stays valid after now.
func (s Session) Remaining(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// TokenIssuer mints a signed session token for an identity.
type TokenIssuer interface {
	Issue(id Identity) (string, error)
}

// TokenVerifier checks a token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (Session, error)
}

// RevocationRegistry records tokens invalidated before their natural expiry.
type RevocationRegistry interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return authctx.Set(ctx, id)
}

// IdentityFrom returns the identity attached by the session middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	return authctx.Get[Identity](ctx)
}
