package account_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/auth/jwt"
	"github.com/kbukum/storefront/auth/revocation"
	"github.com/kbukum/storefront/auth/session"
	"github.com/kbukum/storefront/database/testutil"
	"github.com/kbukum/storefront/internal/account"
	"github.com/kbukum/storefront/logger"
	redistest "github.com/kbukum/storefront/redis/testutil"
	"github.com/kbukum/storefront/server/middleware"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewDB(t, account.Models()...)
	client, _ := redistest.NewClient(t)

	issuer, err := session.NewIssuer(jwt.Config{Secret: "handler-test-secret"})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	registry := revocation.NewRedisRegistry(client, revocation.Config{})
	cookie := auth.CookieConfig{Name: "token", Path: "/", SameSite: "strict"}

	svc := account.NewService(account.Deps{
		Store:    account.NewGormStore(db),
		Tokens:   issuer,
		Registry: registry,
	})
	sessions := middleware.NewSession(issuer, registry, cookie.Name, logger.NewNop())

	r := gin.New()
	account.NewHandler(svc, sessions, account.HandlerConfig{
		Cookie:     cookie,
		SessionTTL: issuer.TTL(),
	}).Mount(r)
	r.POST("/seller-only", sessions.Require(auth.RoleSeller), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return &api{t: t, router: r}
}

func (a *api) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	e, _ := decode(t, rec)["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

var john = map[string]any{
	"username": "john",
	"email":    "john@x.com",
	"password": "Secret123!",
	"fullName": map[string]any{"firstName": "John", "lastName": "L"},
}

func TestAPI_RegisterLoginLogoutScenario(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/register", john, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %s", rec.Code, rec.Body)
	}
	body := decode(t, rec)
	data := body["data"].(map[string]any)
	if data["role"] != "user" {
		t.Errorf("role = %v, want user", data["role"])
	}
	if body["message"] != "User registered successfully" {
		t.Errorf("message = %v", body["message"])
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("register did not set the session cookie")
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie attributes = %+v", cookie)
	}
	if cookie.MaxAge != int(jwt.DefaultTTL.Seconds()) {
		t.Errorf("cookie max-age = %d", cookie.MaxAge)
	}

	rec = a.do(http.MethodPost, "/login", map[string]any{"email": "john@x.com", "password": "Secret123!"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", rec.Code, rec.Body)
	}
	body = decode(t, rec)
	token, _ := body["token"].(string)
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("token %q is not a three-segment JWS", token)
	}
	user := body["user"].(map[string]any)
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("login response exposes the password hash")
	}
	if name := user["fullName"].(map[string]any); name["firstName"] != "John" {
		t.Errorf("fullName = %v", name)
	}

	rec = a.do(http.MethodPost, "/login", map[string]any{"email": "john@x.com", "password": "Wrong123!"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d", rec.Code)
	}

	if rec = a.do(http.MethodGet, "/me", nil, token); rec.Code != http.StatusOK {
		t.Fatalf("me before logout: status = %d", rec.Code)
	}
	if me := decode(t, rec)["user"].(map[string]any); me["username"] != "john" {
		t.Errorf("me = %v", me)
	}

	rec = a.do(http.MethodGet, "/logout", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Errorf("logout did not clear the cookie: %+v", c)
	}

	rec = a.do(http.MethodGet, "/me", nil, token)
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "UNAUTHENTICATED" {
		t.Fatalf("me after logout: status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestAPI_RegisterConflictAndValidation(t *testing.T) {
	a := newAPI(t)
	if rec := a.do(http.MethodPost, "/register", john, ""); rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}

	dupe := map[string]any{
		"username": "john", "email": "other@x.com", "password": "Secret123!",
		"fullName": map[string]any{"firstName": "J", "lastName": "L"},
	}
	if rec := a.do(http.MethodPost, "/register", dupe, ""); rec.Code != http.StatusConflict {
		t.Errorf("duplicate username: status = %d", rec.Code)
	}

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"bad email", map[string]any{"username": "jane", "email": "nope", "password": "Secret123!", "fullName": map[string]any{"firstName": "J", "lastName": "D"}}, "email"},
		{"short username", map[string]any{"username": "ja", "email": "jane@x.com", "password": "Secret123!", "fullName": map[string]any{"firstName": "J", "lastName": "D"}}, "username"},
		{"bad role", map[string]any{"username": "jane", "email": "jane@x.com", "password": "Secret123!", "role": "admin", "fullName": map[string]any{"firstName": "J", "lastName": "D"}}, "role"},
		{"missing last name", map[string]any{"username": "jane", "email": "jane@x.com", "password": "Secret123!", "fullName": map[string]any{"firstName": "J"}}, "fullName.lastName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/register", tt.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}
			e := decode(t, rec)["error"].(map[string]any)
			fields, _ := e["details"].(map[string]any)["fields"].(map[string]any)
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("fields = %v, want an entry for %q", fields, tt.field)
			}
		})
	}
}

func TestAPI_SessionGate(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodPost, "/register", john, "")
	token := decode(t, rec)["token"].(string)

	sig := strings.LastIndex(token, ".") + 1
	flipped := byte('A')
	if token[sig] == 'A' {
		flipped = 'B'
	}
	tampered := token[:sig] + string(flipped) + token[sig+1:]

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no cookie", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"tampered signature", http.MethodGet, "/me", tampered, http.StatusUnauthorized},
		{"user on seller route", http.MethodPost, "/seller-only", token, http.StatusForbidden},
		{"addresses need a session", http.MethodGet, "/users/me/addresses", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := a.do(tt.method, tt.path, nil, tt.token); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAPI_AddressBook(t *testing.T) {
	a := newAPI(t)
	token := decode(t, a.do(http.MethodPost, "/register", john, ""))["token"].(string)

	home := map[string]any{"street": "1 Main", "city": "Pune", "state": "MH", "pincode": "411001", "country": "IN", "isDefault": true}
	work := map[string]any{"street": "2 Park", "city": "Pune", "state": "MH", "pincode": "411002", "country": "IN"}

	rec := a.do(http.MethodPost, "/users/me/addresses", home, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add home: status = %d, body = %s", rec.Code, rec.Body)
	}
	homeID := decode(t, rec)["address"].(map[string]any)["id"].(string)
	rec = a.do(http.MethodPost, "/users/me/addresses", work, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add work: status = %d", rec.Code)
	}
	workID := decode(t, rec)["address"].(map[string]any)["id"].(string)

	blank := map[string]any{"street": "  ", "city": "Pune", "state": "MH", "pincode": "411001", "country": "IN"}
	if rec := a.do(http.MethodPost, "/users/me/addresses", blank, token); rec.Code != http.StatusBadRequest {
		t.Errorf("blank street: status = %d", rec.Code)
	}

	body := decode(t, a.do(http.MethodGet, "/users/me/addresses", nil, token))
	if body["defaultAddressId"] != homeID {
		t.Errorf("defaultAddressId = %v, want %s", body["defaultAddressId"], homeID)
	}
	if n := len(body["addresses"].([]any)); n != 2 {
		t.Fatalf("addresses = %d, want 2", n)
	}

	rec = a.do(http.MethodDelete, "/users/me/addresses/"+workID, nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("first delete: status = %d", rec.Code)
	}
	if n := len(decode(t, rec)["addresses"].([]any)); n != 1 {
		t.Errorf("remaining = %d, want 1", n)
	}

	rec = a.do(http.MethodDelete, "/users/me/addresses/"+workID, nil, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d", rec.Code)
	}
	body = decode(t, a.do(http.MethodGet, "/users/me/addresses", nil, token))
	if n := len(body["addresses"].([]any)); n != 1 {
		t.Errorf("list changed after failed delete: %d", n)
	}
}

func TestAPI_LogoutWithoutSession(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/logout", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if decode(t, rec)["message"] != "Logged out successfully" {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestAPI_RepeatedLoginsKeepTheirStatus(t *testing.T) {
	a := newAPI(t)
	if rec := a.do(http.MethodPost, "/register", john, ""); rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}

	wrong := map[string]any{"email": "john@x.com", "password": "Wrong123!"}
	statuses := map[int]int{}
	for range 35 {
		statuses[a.do(http.MethodPost, "/login", wrong, "").Code]++
	}
	if len(statuses) != 1 || statuses[http.StatusUnauthorized] != 35 {
		t.Errorf("wrong-password statuses = %v, want only 401", statuses)
	}

	right := map[string]any{"email": "john@x.com", "password": "Secret123!"}
	if rec := a.do(http.MethodPost, "/login", right, ""); rec.Code != http.StatusOK {
		t.Errorf("login after failures: status = %d, want 200", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/register", map[string]any{}, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("register after many calls: status = %d, want 400", rec.Code)
	}
}
