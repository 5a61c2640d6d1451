package auth

import (
	"net/http"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.JWT.Secret = "s"
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Cookie.Name != "token" || cfg.Cookie.Path != "/" {
		t.Errorf("cookie defaults = %+v", cfg.Cookie)
	}
	if cfg.JWT.TTL != 7*24*time.Hour {
		t.Errorf("jwt ttl = %v", cfg.JWT.TTL)
	}
}

func TestConfigRequiresSecret(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestSessionCookie(t *testing.T) {
	cc := CookieConfig{Name: "token", Path: "/", SameSite: "strict"}

	c := cc.Session("abc", 7*24*time.Hour)
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Errorf("unexpected attributes %+v", c)
	}
	if c.MaxAge != 604800 {
		t.Errorf("MaxAge = %d", c.MaxAge)
	}

	cleared := cc.Cleared()
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Errorf("cleared cookie = %+v", cleared)
	}

	cc.Insecure = true
	if cc.Session("abc", time.Hour).Secure {
		t.Error("insecure cookie should not be Secure")
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(""); err != nil || r != RoleUser {
		t.Errorf("ParseRole(\"\") = %q, %v", r, err)
	}
	if r, err := ParseRole("seller"); err != nil || r != RoleSeller {
		t.Errorf("ParseRole(seller) = %q, %v", r, err)
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Error("expected error for unknown role")
	}
	if !RoleSeller.In(RoleUser, RoleSeller) || RoleUser.In(RoleSeller) {
		t.Error("In() mismatch")
	}
}
