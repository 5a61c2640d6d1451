package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/kbukum/storefront/resilience"
)

var (
	// ErrNotImage is returned when uploaded bytes do not sniff as image/*.
	ErrNotImage = errors.New("storage: content is not an image")
	// ErrTooLarge is returned when uploaded bytes exceed the size limit.
	ErrTooLarge = errors.New("storage: content exceeds size limit")
	// ErrEmpty is returned for zero-length uploads.
	ErrEmpty = errors.New("storage: content is empty")
)

// Asset describes a stored image.
type Asset struct {
	ID          string
	Key         string
	URL         string
	Thumbnail   string
	ContentType string
	Size        int64
}

// AssetsConfig configures the image uploader.
type AssetsConfig struct {
	// Prefix groups objects under a directory such as "products".
	Prefix string

	// MaxSize caps a single upload in bytes (default: DefaultMaxFileSize).
	MaxSize int64

	// ThumbnailQuery is appended to the URL to form the thumbnail URL, for
	// CDNs that resize on the fly (for example "tr=w-300"). Empty means the
	// thumbnail is the original.
	ThumbnailQuery string

	// Retry re-attempts failed writes to the backing store. The zero value
	// tries once.
	Retry resilience.RetryConfig
}

// Assets stores image uploads under unique keys and hands back their URLs.
type Assets struct {
	store Storage
	cfg   AssetsConfig
}

// NewAssets creates an uploader on store.
func NewAssets(store Storage, cfg AssetsConfig) *Assets {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxFileSize
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &Assets{store: store, cfg: cfg}
}

// Put sniffs data, rejects anything that is not an image and stores it
// under a fresh key.
func (a *Assets) Put(ctx context.Context, data []byte) (Asset, error) {
	if len(data) == 0 {
		return Asset{}, ErrEmpty
	}
	if int64(len(data)) > a.cfg.MaxSize {
		return Asset{}, fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, len(data), a.cfg.MaxSize)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Asset{}, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	id := uuid.NewString()
	key := path.Join(a.cfg.Prefix, id+mt.Extension())
	contentType, _, _ := strings.Cut(mt.String(), ";")
	err := resilience.Retry(ctx, a.cfg.Retry, func(ctx context.Context) error {
		return a.store.Upload(ctx, key, bytes.NewReader(data), contentType)
	})
	if err != nil {
		return Asset{}, err
	}

	u, err := a.store.URL(ctx, key)
	if err != nil {
		return Asset{}, err
	}
	return Asset{
		ID:          id,
		Key:         key,
		URL:         u,
		Thumbnail:   a.thumbnail(u),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Remove deletes a stored asset by key.
func (a *Assets) Remove(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}

func (a *Assets) thumbnail(raw string) string {
	if a.cfg.ThumbnailQuery == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.RawQuery == "" {
		u.RawQuery = a.cfg.ThumbnailQuery
	} else {
		u.RawQuery += "&" + a.cfg.ThumbnailQuery
	}
	return u.String()
}
