package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/storefront/auth/jwt"
	"github.com/kbukum/storefront/auth/password"
	"github.com/kbukum/storefront/auth/revocation"
)

// Config holds all authentication configuration.
// It composes subpackage configs for loading from YAML/env via mapstructure.
type Config struct {
	JWT        jwt.Config        `mapstructure:"jwt"`
	Password   password.Config   `mapstructure:"password"`
	Cookie     CookieConfig      `mapstructure:"cookie"`
	Revocation revocation.Config `mapstructure:"revocation"`
}

// CookieConfig shapes the session cookie.
type CookieConfig struct {
	Name   string `mapstructure:"name"`
	Path   string `mapstructure:"path"`
	Domain string `mapstructure:"domain"`

	// Insecure drops the Secure attribute. Local development over plain HTTP only.
	Insecure bool `mapstructure:"insecure"`

	// SameSite is one of strict, lax or none (default: strict).
	SameSite string `mapstructure:"same_site"`
}

// ApplyDefaults sets sensible defaults for every sub-configuration.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Revocation.ApplyDefaults()
	if c.Cookie.Name == "" {
		c.Cookie.Name = "token"
	}
	if c.Cookie.Path == "" {
		c.Cookie.Path = "/"
	}
	if c.Cookie.SameSite == "" {
		c.Cookie.SameSite = "strict"
	}
}

// Validate checks all sub-configurations.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	if err := c.Revocation.Validate(); err != nil {
		return fmt.Errorf("auth.revocation: %w", err)
	}
	if _, err := parseSameSite(c.Cookie.SameSite); err != nil {
		return fmt.Errorf("auth.cookie: %w", err)
	}
	return nil
}

// SameSiteMode returns the http.SameSite value for the cookie.
func (c CookieConfig) SameSiteMode() http.SameSite {
	mode, err := parseSameSite(c.SameSite)
	if err != nil {
		return http.SameSiteStrictMode
	}
	return mode
}

// Session builds the cookie carrying token for ttl.
func (c CookieConfig) Session(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   int(ttl / time.Second),
		Secure:   !c.Insecure,
		HttpOnly: true,
		SameSite: c.SameSiteMode(),
	}
}

// Cleared builds a cookie that deletes the session cookie.
func (c CookieConfig) Cleared() *http.Cookie {
	cookie := c.Session("", 0)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("unknown same_site %q", s)
}
