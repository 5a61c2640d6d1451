package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxImages caps the images attached to one product.
const MaxImages = 5

// Currency is an ISO 4217 code accepted for prices.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// Currencies lists the accepted currencies; the first is the default.
var Currencies = []string{string(CurrencyINR), string(CurrencyUSD)}

// Price is an amount in a currency.
type Price struct {
	Amount   float64  `gorm:"not null;default:0" json:"amount"`
	Currency Currency `gorm:"size:3;not null;default:INR" json:"currency"`
}

// Product is a listing owned by a seller.
type Product struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Price       Price          `gorm:"embedded;embeddedPrefix:price_" json:"price"`
	SellerID    string         `gorm:"type:varchar(36);not null;index" json:"seller"`
	Images      []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProductImage references an uploaded image.
type ProductImage struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID string `gorm:"type:varchar(36);not null;index" json:"-"`
	Key       string `gorm:"size:255;not null" json:"-"`
	URL       string `gorm:"size:1024;not null" json:"url"`
	Thumbnail string `gorm:"size:1024" json:"thumbnail"`
	Position  int    `gorm:"not null;default:0" json:"-"`
}

// Models lists the tables this package owns, in migration order.
func Models() []interface{} {
	return []interface{}{&Product{}, &ProductImage{}}
}
