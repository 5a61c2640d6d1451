package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/kbukum/storefront/errors"
	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/observability"
	"github.com/kbukum/storefront/storage"
)

// Page limits for listings.
const (
	DefaultLimit = 20
	MaxLimit     = 20
)

// Uploader stores raw image bytes and describes the stored asset.
type Uploader interface {
	Put(ctx context.Context, data []byte) (storage.Asset, error)
	Remove(ctx context.Context, key string) error
}

// Service implements the catalog operations.
type Service struct {
	store    Store
	uploader Uploader
	metrics  *observability.Metrics
	log      *logger.Logger

	// uploadConcurrency bounds parallel uploads for one product.
	uploadConcurrency int
}

// NewService creates a Service.
func NewService(store Store, uploader Uploader, metrics *observability.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:             store,
		uploader:          uploader,
		metrics:           metrics,
		log:               log.WithComponent("catalog"),
		uploadConcurrency: MaxImages,
	}
}

// CreateInput is a new product as submitted by a seller.
type CreateInput struct {
	Title       string
	Description string
	Price       Price
	Images      [][]byte
}

// Create uploads the images of in and stores the product under sellerID.
// Images upload in parallel; the first failure cancels the rest and any
// image already stored is removed.
func (s *Service) Create(ctx context.Context, sellerID string, in CreateInput) (*Product, error) {
	ctx, span := observability.StartSpan(ctx, "catalog.Create")
	defer span.End()

	if len(in.Images) > MaxImages {
		return nil, apperrors.InvalidInput("images", fmt.Sprintf("at most %d images are allowed", MaxImages))
	}
	if in.Price.Currency == "" {
		in.Price.Currency = CurrencyINR
	}

	assets, err := s.upload(ctx, in.Images)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	p := &Product{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		SellerID:    sellerID,
		Images:      make([]ProductImage, len(assets)),
	}
	for i, a := range assets {
		p.Images[i] = ProductImage{ID: a.ID, Key: a.Key, URL: a.URL, Thumbnail: a.Thumbnail, Position: i}
	}
	if err := s.store.Create(ctx, p); err != nil {
		s.discard(ctx, assets)
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	s.log.WithContext(ctx).Info("Product created", map[string]interface{}{
		"product_id":          p.ID,
		logger.FieldAccountID: sellerID,
		"images":              len(assets),
	})
	return p, nil
}

func (s *Service) upload(ctx context.Context, images [][]byte) ([]storage.Asset, error) {
	assets := make([]storage.Asset, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadConcurrency)
	for i, data := range images {
		g.Go(func() error {
			a, err := s.uploader.Put(gctx, data)
			s.metrics.Upload(err == nil)
			if err != nil {
				return uploadError(i, err)
			}
			assets[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		stored := assets[:0:0]
		for _, a := range assets {
			if a.Key != "" {
				stored = append(stored, a)
			}
		}
		s.discard(ctx, stored)
		return nil, err
	}
	return assets, nil
}

func uploadError(i int, err error) error {
	field := fmt.Sprintf("images[%d]", i)
	switch {
	case errors.Is(err, storage.ErrNotImage):
		return apperrors.InvalidInput(field, "must be an image")
	case errors.Is(err, storage.ErrTooLarge):
		return apperrors.InvalidInput(field, "is too large")
	case errors.Is(err, storage.ErrEmpty):
		return apperrors.InvalidInput(field, "is empty")
	case errors.Is(err, context.Canceled):
		return err
	}
	return apperrors.ServiceUnavailable("storage").WithCause(err)
}

// discard removes stored assets, logging failures. It runs detached from
// ctx so a cancelled request still cleans up.
func (s *Service) discard(ctx context.Context, assets []storage.Asset) {
	ctx = context.WithoutCancel(ctx)
	for _, a := range assets {
		if err := s.uploader.Remove(ctx, a.Key); err != nil {
			s.log.WithContext(ctx).Warn("Failed to remove orphaned image", map[string]interface{}{
				"key":             a.Key,
				logger.FieldError: err.Error(),
			})
		}
	}
}

// List returns products matching f. The limit is clamped to MaxLimit.
func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	f.Limit = min(f.Limit, MaxLimit)
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, apperrors.InvalidInput("minprice", "must not exceed maxprice")
	}
	return s.store.List(ctx, f)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.Get(ctx, id)
}

// Mine lists the products of sellerID.
func (s *Service) Mine(ctx context.Context, sellerID string, skip, limit int) ([]Product, error) {
	return s.List(ctx, Filter{SellerID: sellerID, Skip: skip, Limit: limit})
}

// Update applies patch to a product owned by sellerID.
func (s *Service) Update(ctx context.Context, sellerID, id string, patch Patch) (*Product, error) {
	p, err := s.owned(ctx, sellerID, id, "edit")
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if err := s.store.Update(ctx, p, patch); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product owned by sellerID together with its images.
func (s *Service) Delete(ctx context.Context, sellerID, id string) error {
	p, err := s.owned(ctx, sellerID, id, "delete")
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, p.ID); err != nil {
		return err
	}

	assets := make([]storage.Asset, len(p.Images))
	for i, img := range p.Images {
		assets[i] = storage.Asset{ID: img.ID, Key: img.Key}
	}
	s.discard(ctx, assets)

	s.log.WithContext(ctx).Info("Product deleted", map[string]interface{}{
		"product_id":          p.ID,
		logger.FieldAccountID: sellerID,
	})
	return nil
}

func (s *Service) owned(ctx context.Context, sellerID, id, action string) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, apperrors.Forbidden(fmt.Sprintf("You do not have permission to %s this product", action))
	}
	return p, nil
}
