// Package session mints and verifies the signed session tokens handed to
// browsers in the token cookie.
package session

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/storefront/auth"
)

// Claims is the JWT payload of a session token.
type Claims struct {
	gojwt.RegisteredClaims
	AccountID string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
}

// SetDefaults stamps iat, exp, iss, aud and a fresh jti.
func (c *Claims) SetDefaults(now time.Time, ttl time.Duration, issuer string, audience []string) {
	c.IssuedAt = gojwt.NewNumericDate(now)
	c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	c.ID = uuid.NewString()
	if issuer != "" {
		c.Issuer = issuer
	}
	if len(audience) > 0 {
		c.Audience = audience
	}
	if c.Subject == "" {
		c.Subject = c.AccountID
	}
}

// Identity returns the principal carried by the claims.
func (c *Claims) Identity() auth.Identity {
	return auth.Identity{
		AccountID: c.AccountID,
		Username:  c.Username,
		Email:     c.Email,
		Role:      c.Role,
	}
}

func claimsFor(id auth.Identity) *Claims {
	return &Claims{
		AccountID: id.AccountID,
		Username:  id.Username,
		Email:     id.Email,
		Role:      id.Role,
	}
}
