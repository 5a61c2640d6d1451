package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kbukum/storefront/storage"
)

func newTestStorage(t *testing.T, publicURL string) *Storage {
	t.Helper()
	s, err := NewStorage(Config{BasePath: t.TempDir(), PublicURL: publicURL})
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	return s
}

func TestUploadDownloadDelete(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	if err := s.Upload(ctx, "products/a.txt", strings.NewReader("hello"), "text/plain"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	rc, err := s.Download(ctx, "products/a.txt")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(data, []byte("hello")) {
		t.Errorf("data = %q", data)
	}

	if ok, _ := s.Exists(ctx, "products/a.txt"); !ok {
		t.Error("expected file to exist")
	}
	if err := s.Delete(ctx, "products/a.txt"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "products/a.txt"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, err := s.Download(ctx, "products/a.txt"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() after delete error = %v", err)
	}
}

func TestPathsStayInsideBase(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()

	if err := s.Upload(ctx, "../../escape.txt", strings.NewReader("x"), ""); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	files, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != "escape.txt" {
		t.Errorf("files = %+v", files)
	}
}

func TestURL(t *testing.T) {
	ctx := context.Background()

	s := newTestStorage(t, "http://localhost:3001/uploads/")
	if got, _ := s.URL(ctx, "products/x.png"); got != "http://localhost:3001/uploads/products/x.png" {
		t.Errorf("URL() = %q", got)
	}

	s = newTestStorage(t, "")
	if got, _ := s.URL(ctx, "x.png"); !strings.HasPrefix(got, "file://") {
		t.Errorf("URL() = %q", got)
	}
}

func TestListPrefix(t *testing.T) {
	s := newTestStorage(t, "")
	ctx := context.Background()
	for _, p := range []string{"products/b.png", "products/a.png", "avatars/c.png"} {
		_ = s.Upload(ctx, p, strings.NewReader("x"), "")
	}

	files, err := s.List(ctx, "products/")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Path != "products/a.png" {
		t.Errorf("files = %+v", files)
	}
	if files[0].ContentType != "image/png" {
		t.Errorf("ContentType = %q", files[0].ContentType)
	}
}
