package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/storefront/storage"
)

type memFile struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// Memory is a storage.Storage backed by a map. Set FailUploads to make
// every Upload return an error, or FailFirst to fail only that many.
type Memory struct {
	FailUploads error
	FailFirst   int

	files   map[string]*memFile
	uploads int
	mu      sync.RWMutex
}

var _ storage.Storage = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{files: make(map[string]*memFile)}
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// ContentType returns the content type recorded for path.
func (m *Memory) ContentType(path string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.files[path]; ok {
		return f.contentType
	}
	return ""
}

func (m *Memory) Upload(_ context.Context, path string, reader io.Reader, contentType string) error {
	if m.FailUploads != nil {
		return m.FailUploads
	}
	m.mu.Lock()
	m.uploads++
	n := m.uploads
	m.mu.Unlock()
	if n <= m.FailFirst {
		return fmt.Errorf("upload %d: %w", n, ErrUnavailable)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read upload data: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &memFile{data: data, contentType: contentType, modTime: time.Now()}
	return nil
}

func (m *Memory) Download(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *Memory) URL(_ context.Context, path string) (string, error) {
	return "mem://" + path, nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []storage.FileInfo
	for path, f := range m.files {
		if strings.HasPrefix(path, prefix) {
			result = append(result, storage.FileInfo{
				Path:         path,
				Size:         int64(len(f.data)),
				LastModified: f.modTime,
				ContentType:  f.contentType,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// Uploads returns the number of Upload calls that reached the store.
func (m *Memory) Uploads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uploads
}

// ErrUnavailable is returned by uploads failed through FailFirst.
var ErrUnavailable = errors.New("memory storage: temporarily unavailable")

// PNG is a minimal byte sequence that sniffs as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
