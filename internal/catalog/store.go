package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kbukum/storefront/database"
)

// Filter narrows a product listing. Query matches title or description,
// ignoring case.
type Filter struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
	SellerID string
	Skip     int
	Limit    int
}

// Patch holds the mutable product fields. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Amount      *float64
	Currency    *Currency
}

// Store persists products.
type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	Update(ctx context.Context, p *Product, patch Patch) error
	// Delete removes a product with its image rows.
	Delete(ctx context.Context, id string) error
}

// GormStore is a Store over a GORM database.
type GormStore struct {
	db *database.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a store on db.
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *GormStore) Create(ctx context.Context, p *Product) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return database.FromDatabase(err, "product")
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := s.db.WithContext(ctx).Preload("Images", orderImages).
		Where("id = ?", id).Take(&p).Error
	if err != nil {
		return nil, database.FromDatabase(err, "product")
	}
	return &p, nil
}

func (s *GormStore) List(ctx context.Context, f Filter) ([]Product, error) {
	q := s.db.WithContext(ctx).Model(&Product{}).Preload("Images", orderImages)
	if f.Query != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Query)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.MinPrice != nil {
		q = q.Where("price_amount >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price_amount <= ?", *f.MaxPrice)
	}
	if f.SellerID != "" {
		q = q.Where("seller_id = ?", f.SellerID)
	}

	products := []Product{}
	err := q.Order("created_at DESC").Order("id ASC").
		Offset(f.Skip).Limit(f.Limit).Find(&products).Error
	if err != nil {
		return nil, database.FromDatabase(err, "product")
	}
	return products, nil
}

func (s *GormStore) Update(ctx context.Context, p *Product, patch Patch) error {
	changes := map[string]interface{}{}
	if patch.Title != nil {
		p.Title = *patch.Title
		changes["title"] = p.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
		changes["description"] = p.Description
	}
	if patch.Amount != nil {
		p.Price.Amount = *patch.Amount
		changes["price_amount"] = p.Price.Amount
	}
	if patch.Currency != nil {
		p.Price.Currency = *patch.Currency
		changes["price_currency"] = p.Price.Currency
	}
	if len(changes) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(p).Updates(changes).Error; err != nil {
		return database.FromDatabase(err, "product")
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return database.FromDatabase(err, "product")
	}
	return nil
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
