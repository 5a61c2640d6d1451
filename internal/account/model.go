package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/storefront/auth"
)

// publicColumns is the account projection used everywhere except login.
var publicColumns = []string{
	"id", "username", "email", "first_name", "last_name", "role", "created_at", "updated_at",
}

// Account is a registered principal.
type Account struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FirstName    string    `gorm:"size:100;not null" json:"firstName"`
	LastName     string    `gorm:"size:100;not null" json:"lastName"`
	Role         auth.Role `gorm:"size:16;not null;default:user" json:"role"`
	Addresses    []Address `gorm:"constraint:OnDelete:CASCADE" json:"addresses"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Identity returns the principal a session token for a asserts.
func (a *Account) Identity() auth.Identity {
	return auth.Identity{
		AccountID: a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
	}
}

// Profile returns the sanitized view of a.
func (a *Account) Profile() Profile {
	addresses := a.Addresses
	if addresses == nil {
		addresses = []Address{}
	}
	return Profile{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		FullName: FullName{FirstName: a.FirstName, LastName: a.LastName},
		Role:     a.Role,
		Address:  addresses,
	}
}

// FullName is the JSON shape of an account holder's name.
type FullName struct {
	FirstName string `json:"firstName" validate:"required,notblank"`
	LastName  string `json:"lastName" validate:"required,notblank"`
}

// Profile is an account as returned to its owner. It never carries the
// password hash.
type Profile struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName FullName  `json:"fullName"`
	Role     auth.Role `json:"role"`
	Address  []Address `json:"address"`
}

// Address is a postal address owned by exactly one account.
type Address struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	AccountID string    `gorm:"type:varchar(36);not null;index" json:"-"`
	Street    string    `gorm:"size:255;not null" json:"street"`
	City      string    `gorm:"size:100;not null" json:"city"`
	State     string    `gorm:"size:100;not null" json:"state"`
	Pincode   string    `gorm:"size:16" json:"pincode"`
	Country   string    `gorm:"size:100;not null" json:"country"`
	IsDefault bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (a *Address) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Models lists the tables this package owns, in migration order.
func Models() []interface{} {
	return []interface{}{&Account{}, &Address{}}
}
