package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/auth/jwt"
	"github.com/kbukum/storefront/auth/revocation"
	"github.com/kbukum/storefront/auth/session"
	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/redis/testutil"
	"github.com/kbukum/storefront/server/middleware"
)

var (
	buyer  = auth.Identity{AccountID: "acc-buyer", Username: "bob", Email: "bob@example.com", Role: auth.RoleUser}
	seller = auth.Identity{AccountID: "acc-seller", Username: "sam", Email: "sam@example.com", Role: auth.RoleSeller}
)

type failingRegistry struct{}

func (failingRegistry) Revoke(context.Context, string, time.Duration) error { return nil }
func (failingRegistry) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

type sessionFixture struct {
	issuer   *session.Issuer
	registry auth.RevocationRegistry
	router   *gin.Engine
}

func newSessionFixture(t *testing.T, registry auth.RevocationRegistry) *sessionFixture {
	t.Helper()
	issuer, err := session.NewIssuer(jwt.Config{Secret: "middleware-secret"})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	if registry == nil {
		client, _ := testutil.NewClient(t)
		registry = revocation.NewRedisRegistry(client, revocation.Config{})
	}

	sessions := middleware.NewSession(issuer, registry, "token", logger.NewNop())
	r := gin.New()
	r.GET("/me", sessions.Authenticate(), func(c *gin.Context) {
		id, ok := auth.IdentityFrom(c.Request.Context())
		if !ok {
			t.Error("identity missing from request context")
		}
		c.String(http.StatusOK, id.AccountID)
	})
	r.POST("/products", sessions.Require(auth.RoleSeller), func(c *gin.Context) {
		sess, _ := middleware.SessionFrom(c)
		c.String(http.StatusCreated, sess.Username)
	})
	return &sessionFixture{issuer: issuer, registry: registry, router: r}
}

func (f *sessionFixture) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *sessionFixture) token(t *testing.T, id auth.Identity) string {
	t.Helper()
	tok, err := f.issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

// tamper flips the first character of the signature segment.
func tamper(token string) string {
	i := strings.LastIndexByte(token, '.') + 1
	repl := byte('A')
	if token[i] == 'A' {
		repl = 'B'
	}
	return token[:i] + string(repl) + token[i+1:]
}

func TestSession_ValidCookie(t *testing.T) {
	f := newSessionFixture(t, nil)
	rr := f.do(t, http.MethodGet, "/me", f.token(t, buyer))
	if rr.Code != http.StatusOK || rr.Body.String() != buyer.AccountID {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestSession_Rejections(t *testing.T) {
	f := newSessionFixture(t, nil)
	valid := f.token(t, buyer)
	tampered := tamper(valid)

	tests := []struct {
		name  string
		token string
	}{
		{"missing cookie", ""},
		{"tampered signature", tampered},
		{"garbage", "not-a-jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodGet, "/me", tc.token)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
			if body := decodeError(t, rr); body.Error.Code != "UNAUTHENTICATED" {
				t.Errorf("code = %s", body.Error.Code)
			}
		})
	}
}

func TestSession_IgnoresAuthorizationHeader(t *testing.T) {
	f := newSessionFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+f.token(t, buyer))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", rr.Code)
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	issuer, _ := session.NewIssuer(jwt.Config{Secret: "middleware-secret", Now: func() time.Time { return now.Add(-8 * 24 * time.Hour) }})
	f := newSessionFixture(t, nil)

	old, err := issuer.Issue(buyer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rr := f.do(t, http.MethodGet, "/me", old)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rr.Code)
	}
	if !strings.Contains(decodeError(t, rr).Message, "expired") {
		t.Errorf("expected an expiry message, got %q", decodeError(t, rr).Message)
	}
}

func TestSession_Revoked(t *testing.T) {
	f := newSessionFixture(t, nil)
	tok := f.token(t, buyer)

	if rr := f.do(t, http.MethodGet, "/me", tok); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 before revoke, got %d", rr.Code)
	}
	if err := f.registry.Revoke(context.Background(), tok, time.Hour); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if rr := f.do(t, http.MethodGet, "/me", tok); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revoke, got %d", rr.Code)
	}
}

func TestSession_RegistryFailureFailsClosed(t *testing.T) {
	f := newSessionFixture(t, failingRegistry{})
	rr := f.do(t, http.MethodGet, "/me", f.token(t, buyer))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %s", body.Error.Code)
	}
}

func TestSession_RequireRole(t *testing.T) {
	f := newSessionFixture(t, nil)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"seller allowed", f.token(t, seller), http.StatusCreated},
		{"user forbidden", f.token(t, buyer), http.StatusForbidden},
		{"anonymous unauthenticated", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/products", tc.token)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}
