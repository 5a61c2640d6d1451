package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kbukum/storefront/database/testutil"
	apperrors "github.com/kbukum/storefront/errors"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	return NewGormStore(testutil.NewDB(t, Models()...))
}

func codeOf(err error) apperrors.ErrorCode {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func ptr[T any](v T) *T { return &v }

func seedProducts(t *testing.T, s *GormStore) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	products := []Product{
		{Title: "Red Mug", Description: "ceramic", Price: Price{Amount: 250, Currency: CurrencyINR}, SellerID: "seller-a"},
		{Title: "Blue Mug", Description: "Enamel camping MUG", Price: Price{Amount: 400, Currency: CurrencyINR}, SellerID: "seller-a"},
		{Title: "Teapot", Description: "cast iron", Price: Price{Amount: 1200, Currency: CurrencyINR}, SellerID: "seller-b"},
		{Title: "100% Cotton Towel", Description: "soft", Price: Price{Amount: 15, Currency: CurrencyUSD}, SellerID: "seller-b"},
	}
	for i := range products {
		products[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Create(context.Background(), &products[i]); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
}

func titles(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func TestGormStore_ListFilters(t *testing.T) {
	s := newTestStore(t)
	seedProducts(t, s)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{Limit: 20}, []string{"100% Cotton Towel", "Teapot", "Blue Mug", "Red Mug"}},
		{"query ignores case across fields", Filter{Query: "mug", Limit: 20}, []string{"Blue Mug", "Red Mug"}},
		{"query matches description", Filter{Query: "IRON", Limit: 20}, []string{"Teapot"}},
		{"percent is literal", Filter{Query: "100%", Limit: 20}, []string{"100% Cotton Towel"}},
		{"price range", Filter{MinPrice: ptr(200.0), MaxPrice: ptr(500.0), Limit: 20}, []string{"Blue Mug", "Red Mug"}},
		{"seller", Filter{SellerID: "seller-b", Limit: 20}, []string{"100% Cotton Towel", "Teapot"}},
		{"skip and limit", Filter{Skip: 1, Limit: 2}, []string{"Teapot", "Blue Mug"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			g := titles(got)
			if len(g) != len(tt.want) {
				t.Fatalf("titles = %v, want %v", g, tt.want)
			}
			for i := range g {
				if g[i] != tt.want[i] {
					t.Fatalf("titles = %v, want %v", g, tt.want)
				}
			}
		})
	}
}

func TestGormStore_UpdateAppliesOnlyPatchedFields(t *testing.T) {
	s := newTestStore(t)
	p := &Product{Title: "Mug", Description: "plain", Price: Price{Amount: 10, Currency: CurrencyINR}, SellerID: "s"}
	ctx := context.Background()
	if err := s.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Update(ctx, p, Patch{Amount: ptr(0.0), Currency: ptr(CurrencyUSD)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Mug" || got.Description != "plain" {
		t.Errorf("unpatched fields changed: %+v", got)
	}
	if got.Price.Amount != 0 || got.Price.Currency != CurrencyUSD {
		t.Errorf("price = %+v, want 0 USD", got.Price)
	}
}

func TestGormStore_DeleteRemovesImages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := &Product{
		Title: "Mug", SellerID: "s", Price: Price{Currency: CurrencyINR},
		Images: []ProductImage{{ID: "img-1", Key: "products/img-1.png", URL: "mem://products/img-1.png"}},
	}
	if err := s.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	testutil.AssertRowCount(t, s.db.GormDB, "product_images", 0)

	if _, err := s.Get(ctx, p.ID); codeOf(err) != apperrors.ErrCodeNotFound {
		t.Errorf("Get after delete: code = %q, want NOT_FOUND", codeOf(err))
	}
	if err := s.Delete(ctx, p.ID); codeOf(err) != apperrors.ErrCodeNotFound {
		t.Errorf("second Delete: code = %q, want NOT_FOUND", codeOf(err))
	}
}
