package session

import (
	"fmt"
	"time"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/auth/jwt"
)

// Issuer issues and verifies session tokens. It satisfies both
// auth.TokenIssuer and auth.TokenVerifier.
type Issuer struct {
	svc *jwt.Service[*Claims]
}

var (
	_ auth.TokenIssuer   = (*Issuer)(nil)
	_ auth.TokenVerifier = (*Issuer)(nil)
)

// NewIssuer builds an Issuer from JWT configuration.
func NewIssuer(cfg jwt.Config) (*Issuer, error) {
	svc, err := jwt.NewService(cfg, func() *Claims { return &Claims{} })
	if err != nil {
		return nil, err
	}
	return &Issuer{svc: svc}, nil
}

// Issue signs a token for id that expires after the configured TTL.
func (i *Issuer) Issue(id auth.Identity) (string, error) {
	if id.AccountID == "" {
		return "", fmt.Errorf("session: identity has no account id")
	}
	if !id.Role.Valid() {
		return "", fmt.Errorf("session: invalid role %q", id.Role)
	}
	return i.svc.Generate(claimsFor(id))
}

// Verify checks the token and returns the session it describes. Errors wrap
// the jwt package sentinels.
func (i *Issuer) Verify(token string) (auth.Session, error) {
	claims, err := i.svc.Parse(token)
	if err != nil {
		return auth.Session{}, err
	}
	if claims.AccountID == "" {
		return auth.Session{}, fmt.Errorf("%w: missing account id", jwt.ErrInvalidClaims)
	}
	if !claims.Role.Valid() {
		return auth.Session{}, fmt.Errorf("%w: invalid role %q", jwt.ErrInvalidClaims, claims.Role)
	}

	s := auth.Session{
		Identity: claims.Identity(),
		Token:    token,
		TokenID:  claims.ID,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.svc.TTL() }

// Now returns the issuer clock.
func (i *Issuer) Now() time.Time { return i.svc.Now() }
