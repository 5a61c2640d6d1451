// Package jwt provides a generic JWT service parameterized by the claims type.
//
// The claims type T must implement jwt.Claims, normally by embedding
// jwt.RegisteredClaims. If it also implements
//
//	SetDefaults(now time.Time, ttl time.Duration, issuer string, audience []string)
//
// Generate calls it before signing so iat, exp, iss and aud are stamped
// from configuration.
//
// Parse failures wrap one of ErrMalformed, ErrInvalidSignature, ErrExpired
// or ErrInvalidClaims so callers can classify them with errors.Is.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed means the string is not a three-segment compact JWS.
	ErrMalformed = errors.New("jwt: malformed token")
	// ErrInvalidSignature means the signature does not match or the
	// algorithm is not the configured one.
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	// ErrExpired means the exp claim has passed.
	ErrExpired = errors.New("jwt: token expired")
	// ErrInvalidClaims covers every other claim check: nbf, iss, aud and
	// application-level claim validation.
	ErrInvalidClaims = errors.New("jwt: invalid claims")
	// ErrSigningUnavailable is returned by Generate on a verify-only service.
	ErrSigningUnavailable = errors.New("jwt: no signing key configured")
)

// Service generates and parses tokens carrying claims of type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	parser   *gojwt.Parser
}

// NewService creates a new JWT service. newEmpty returns a fresh T to parse into.
//
//	svc, err := jwt.NewService(cfg, func() *Claims { return &Claims{} })
func NewService[T gojwt.Claims](cfg Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{cfg.signingMethod().Alg()}),
		gojwt.WithTimeFunc(cfg.Now),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
	}
	if cfg.Leeway > 0 {
		opts = append(opts, gojwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(cfg.Issuer))
	}
	if len(cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(cfg.Audience[0]))
	}

	return &Service[T]{cfg: cfg, newEmpty: newEmpty, parser: gojwt.NewParser(opts...)}, nil
}

// TTL returns the configured token lifetime.
func (s *Service[T]) TTL() time.Duration { return s.cfg.TTL }

// Now returns the service clock.
func (s *Service[T]) Now() time.Time { return s.cfg.Now() }

// Generate stamps standard claims and returns the signed compact token.
func (s *Service[T]) Generate(claims T) (string, error) {
	if !s.cfg.canSign() {
		return "", ErrSigningUnavailable
	}
	if setter, ok := any(claims).(interface {
		SetDefaults(time.Time, time.Duration, string, []string)
	}); ok {
		setter.SetDefaults(s.cfg.Now(), s.cfg.TTL, s.cfg.Issuer, s.cfg.Audience)
	}

	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString(s.cfg.signKey())
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and time claims and returns the decoded claims.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	claims := s.newEmpty()
	token, err := s.parser.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		return zero, classify(err)
	}
	if !token.Valid {
		return zero, ErrInvalidClaims
	}
	parsed, ok := token.Claims.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected claims type %T", ErrInvalidClaims, token.Claims)
	}
	return parsed, nil
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return s.cfg.verifyKey(), nil
}

// classify maps golang-jwt errors onto this package's sentinels, keeping
// the original error in the chain.
func classify(err error) error {
	var sentinel error
	switch {
	case errors.Is(err, gojwt.ErrTokenMalformed):
		sentinel = ErrMalformed
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid),
		errors.Is(err, gojwt.ErrTokenUnverifiable):
		sentinel = ErrInvalidSignature
	case errors.Is(err, gojwt.ErrTokenExpired):
		sentinel = ErrExpired
	default:
		sentinel = ErrInvalidClaims
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
