package catalog_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/auth/jwt"
	"github.com/kbukum/storefront/auth/session"
	"github.com/kbukum/storefront/database/testutil"
	"github.com/kbukum/storefront/internal/catalog"
	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/server/middleware"
	"github.com/kbukum/storefront/storage"
	storagetest "github.com/kbukum/storefront/storage/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var (
	seller = auth.Identity{AccountID: "9a3c0c1e-0000-4000-8000-000000000001", Username: "sam", Email: "sam@x.com", Role: auth.RoleSeller}
	rival  = auth.Identity{AccountID: "9a3c0c1e-0000-4000-8000-000000000002", Username: "rex", Email: "rex@x.com", Role: auth.RoleSeller}
	buyer  = auth.Identity{AccountID: "9a3c0c1e-0000-4000-8000-000000000003", Username: "bob", Email: "bob@x.com", Role: auth.RoleUser}
)

type api struct {
	t      *testing.T
	router *gin.Engine
	tokens map[string]string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	issuer, err := session.NewIssuer(jwt.Config{Secret: "catalog-test-secret"})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	a := &api{t: t, tokens: map[string]string{}}
	for _, id := range []auth.Identity{seller, rival, buyer} {
		tok, err := issuer.Issue(id)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		a.tokens[id.Username] = tok
	}

	store := catalog.NewGormStore(testutil.NewDB(t, catalog.Models()...))
	assets := storage.NewAssets(storagetest.NewMemory(), storage.AssetsConfig{Prefix: "products"})
	svc := catalog.NewService(store, assets, nil, logger.NewNop())
	sessions := middleware.NewSession(issuer, nil, "token", logger.NewNop())

	a.router = gin.New()
	catalog.NewHandler(svc, sessions, storage.DefaultMaxFileSize).Mount(a.router)
	return a
}

func (a *api) send(req *http.Request, as string) *httptest.ResponseRecorder {
	a.t.Helper()
	if as != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: a.tokens[as]})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *api) call(method, path string, body any, as string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.send(req, as)
}

func (a *api) create(fields map[string]string, images [][]byte, as string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			a.t.Fatalf("WriteField: %v", err)
		}
	}
	for _, img := range images {
		part, err := w.CreateFormFile("images", "image.png")
		if err != nil {
			a.t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write(img)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/products", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.send(req, as)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func (a *api) mustCreate(title, amount, as string) string {
	a.t.Helper()
	rec := a.create(map[string]string{"title": title, "priceAmount": amount}, [][]byte{storagetest.PNG}, as)
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create %s: status = %d, body = %s", title, rec.Code, rec.Body)
	}
	return decode(a.t, rec)["data"].(map[string]any)["id"].(string)
}

func TestAPI_CreateProduct(t *testing.T) {
	a := newAPI(t)

	rec := a.create(map[string]string{
		"title": "Mug", "description": "ceramic", "priceAmount": "249.50", "priceCurrency": "usd",
	}, [][]byte{storagetest.PNG, storagetest.PNG}, "sam")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	body := decode(t, rec)
	if body["message"] != "Product created" {
		t.Errorf("message = %v", body["message"])
	}
	data := body["data"].(map[string]any)
	price := data["price"].(map[string]any)
	if price["amount"] != 249.5 || price["currency"] != "USD" {
		t.Errorf("price = %v", price)
	}
	if data["seller"] != seller.AccountID {
		t.Errorf("seller = %v", data["seller"])
	}
	images := data["images"].([]any)
	if len(images) != 2 {
		t.Fatalf("images = %d, want 2", len(images))
	}
	if img := images[0].(map[string]any); img["url"] == "" || img["thumbnail"] == "" {
		t.Errorf("image = %v", img)
	}
}

func TestAPI_CreateProductRejections(t *testing.T) {
	a := newAPI(t)
	six := make([][]byte, catalog.MaxImages+1)
	for i := range six {
		six[i] = storagetest.PNG
	}

	tests := []struct {
		name   string
		fields map[string]string
		images [][]byte
		as     string
		want   int
	}{
		{"anonymous", map[string]string{"title": "Mug", "priceAmount": "1"}, nil, "", http.StatusUnauthorized},
		{"buyer", map[string]string{"title": "Mug", "priceAmount": "1"}, nil, "bob", http.StatusForbidden},
		{"missing title", map[string]string{"priceAmount": "1"}, nil, "sam", http.StatusBadRequest},
		{"bad amount", map[string]string{"title": "Mug", "priceAmount": "cheap"}, nil, "sam", http.StatusBadRequest},
		{"bad currency", map[string]string{"title": "Mug", "priceAmount": "1", "priceCurrency": "EUR"}, nil, "sam", http.StatusBadRequest},
		{"too many images", map[string]string{"title": "Mug", "priceAmount": "1"}, six, "sam", http.StatusBadRequest},
		{"not an image", map[string]string{"title": "Mug", "priceAmount": "1"}, [][]byte{[]byte("hello")}, "sam", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := a.create(tt.fields, tt.images, tt.as); rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestAPI_ListAndGet(t *testing.T) {
	a := newAPI(t)
	mugID := a.mustCreate("Red Mug", "250", "sam")
	a.mustCreate("Teapot", "1200", "rex")

	count := func(query string) int {
		t.Helper()
		rec := a.call(http.MethodGet, "/products"+query, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("list %s: status = %d", query, rec.Code)
		}
		return len(decode(t, rec)["data"].([]any))
	}
	if n := count(""); n != 2 {
		t.Errorf("all = %d", n)
	}
	if n := count("?q=MUG"); n != 1 {
		t.Errorf("q=MUG = %d", n)
	}
	if n := count("?minprice=500&maxprice=2000"); n != 1 {
		t.Errorf("price range = %d", n)
	}
	if n := count("?limit=1"); n != 1 {
		t.Errorf("limit=1 = %d", n)
	}

	if rec := a.call(http.MethodGet, "/products?minprice=abc", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad minprice: status = %d", rec.Code)
	}

	rec := a.call(http.MethodGet, "/products/"+mugID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	if p := decode(t, rec)["product"].(map[string]any); p["title"] != "Red Mug" {
		t.Errorf("product = %v", p)
	}
	for _, id := range []string{"00000000-0000-0000-0000-000000000000", "not-a-uuid"} {
		if rec := a.call(http.MethodGet, "/products/"+id, nil, ""); rec.Code != http.StatusNotFound {
			t.Errorf("get %s: status = %d, want 404", id, rec.Code)
		}
	}

	rec = a.call(http.MethodGet, "/products/seller", nil, "sam")
	if rec.Code != http.StatusOK {
		t.Fatalf("mine: status = %d", rec.Code)
	}
	if mine := decode(t, rec)["data"].([]any); len(mine) != 1 {
		t.Errorf("mine = %d, want 1", len(mine))
	}
	if rec := a.call(http.MethodGet, "/products/seller", nil, "bob"); rec.Code != http.StatusForbidden {
		t.Errorf("buyer mine: status = %d", rec.Code)
	}
}

func TestAPI_UpdateAndDelete(t *testing.T) {
	a := newAPI(t)
	id := a.mustCreate("Mug", "100", "sam")
	path := "/products/" + id

	patch := map[string]any{
		"title":  "Big Mug",
		"price":  map[string]any{"amount": 150, "currency": "USD"},
		"seller": rival.AccountID,
	}
	if rec := a.call(http.MethodPatch, path, patch, "rex"); rec.Code != http.StatusForbidden {
		t.Errorf("rival patch: status = %d", rec.Code)
	}

	rec := a.call(http.MethodPatch, path, patch, "sam")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner patch: status = %d, body = %s", rec.Code, rec.Body)
	}
	body := decode(t, rec)
	if _, ok := body["product"]; ok {
		t.Errorf("update answered under \"product\", want \"data\": %v", body)
	}
	p, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("update body = %v, want data object", body)
	}
	if body["message"] != "Product updated" || p["title"] != "Big Mug" || p["seller"] != seller.AccountID {
		t.Errorf("product = %v", p)
	}
	if price := p["price"].(map[string]any); price["amount"] != 150.0 || price["currency"] != "USD" {
		t.Errorf("price = %v", price)
	}

	bad := map[string]any{"price": map[string]any{"amount": -1}}
	if rec := a.call(http.MethodPatch, path, bad, "sam"); rec.Code != http.StatusBadRequest {
		t.Errorf("negative amount: status = %d", rec.Code)
	}
	if rec := a.call(http.MethodPatch, "/products/nope", patch, "sam"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id: status = %d", rec.Code)
	}

	if rec := a.call(http.MethodDelete, path, nil, "rex"); rec.Code != http.StatusForbidden {
		t.Errorf("rival delete: status = %d", rec.Code)
	}
	rec = a.call(http.MethodDelete, path, nil, "sam")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Product deleted") {
		t.Fatalf("owner delete: status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec := a.call(http.MethodDelete, path, nil, "sam"); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d", rec.Code)
	}
}
