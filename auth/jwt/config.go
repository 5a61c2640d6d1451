package jwt

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod defines supported JWT signing algorithms.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
	RS256 SigningMethod = "RS256"
	RS384 SigningMethod = "RS384"
	RS512 SigningMethod = "RS512"
	ES256 SigningMethod = "ES256"
	ES384 SigningMethod = "ES384"
	ES512 SigningMethod = "ES512"
)

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = 7 * 24 * time.Hour

// Config configures the JWT token service.
type Config struct {
	// Secret is the HMAC signing key (required for HS* methods).
	Secret string `mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `mapstructure:"method"`

	// Issuer is the "iss" claim. When set, parsed tokens must carry it.
	Issuer string `mapstructure:"issuer"`

	// Audience is the "aud" claim. When set, parsed tokens must carry the first entry.
	Audience []string `mapstructure:"audience"`

	// TTL is the lifetime of issued tokens (default: 7 days).
	TTL time.Duration `mapstructure:"ttl"`

	// Leeway tolerates clock skew when checking exp and nbf.
	Leeway time.Duration `mapstructure:"leeway"`

	// PrivateKey is the RSA or ECDSA private key for RS*/ES* methods.
	PrivateKey interface{} `mapstructure:"-"`

	// PublicKey verifies RS*/ES* tokens. Derived from PrivateKey when unset,
	// so verify-only services can set just this.
	PublicKey interface{} `mapstructure:"-"`

	// Now overrides the clock for issuing and validating. Tests only.
	Now func() time.Time `mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Validate checks required fields based on the signing method.
func (c *Config) Validate() error {
	if c.TTL < 0 {
		return errors.New("jwt: ttl must be positive")
	}
	switch c.Method {
	case HS256, HS384, HS512:
		if c.Secret == "" {
			return errors.New("jwt: secret is required for HMAC signing methods")
		}
	case RS256, RS384, RS512:
		if _, ok := c.PrivateKey.(*rsa.PrivateKey); !ok {
			if _, ok := c.PublicKey.(*rsa.PublicKey); !ok {
				return errors.New("jwt: an RSA private or public key is required for RSA signing methods")
			}
		}
	case ES256, ES384, ES512:
		if _, ok := c.PrivateKey.(*ecdsa.PrivateKey); !ok {
			if _, ok := c.PublicKey.(*ecdsa.PublicKey); !ok {
				return errors.New("jwt: an ECDSA private or public key is required for ECDSA signing methods")
			}
		}
	default:
		return errors.New("jwt: unsupported signing method: " + string(c.Method))
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	if m := gojwt.GetSigningMethod(string(c.Method)); m != nil {
		return m
	}
	return gojwt.SigningMethodHS256
}

func (c *Config) signKey() interface{} {
	switch c.Method {
	case HS256, HS384, HS512:
		return []byte(c.Secret)
	default:
		return c.PrivateKey
	}
}

func (c *Config) verifyKey() interface{} {
	switch c.Method {
	case HS256, HS384, HS512:
		return []byte(c.Secret)
	}
	if c.PublicKey != nil {
		return c.PublicKey
	}
	switch pk := c.PrivateKey.(type) {
	case *rsa.PrivateKey:
		return &pk.PublicKey
	case *ecdsa.PrivateKey:
		return &pk.PublicKey
	}
	return nil
}

// canSign reports whether a signing key is available.
func (c *Config) canSign() bool {
	switch c.Method {
	case HS256, HS384, HS512:
		return c.Secret != ""
	}
	return c.PrivateKey != nil
}
