package account

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kbukum/storefront/database"
	apperrors "github.com/kbukum/storefront/errors"
)

const msgTaken = "Username or email already exists"

// Store is the credential store.
type Store interface {
	// ExistsByUsernameOrEmail reports whether either identifier is taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// Create inserts acct together with its addresses.
	Create(ctx context.Context, acct *Account) error
	// FindCredentials loads an account including its password hash. email
	// takes precedence over username when both are set.
	FindCredentials(ctx context.Context, email, username string) (*Account, error)
	// FindByID loads the public columns of an account.
	FindByID(ctx context.Context, id string) (*Account, error)
	ListAddresses(ctx context.Context, accountID string) ([]Address, error)
	// AddAddress appends addr. A default address clears the previous default.
	AddAddress(ctx context.Context, accountID string, addr *Address) error
	// DeleteAddress removes an address owned by accountID.
	DeleteAddress(ctx context.Context, accountID, addressID string) error
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

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *GormStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Account{}).
		Where("username = ? OR email = ?", username, NormalizeEmail(email)).
		Limit(1).Count(&count).Error
	if err != nil {
		return false, database.FromDatabase(err, "account")
	}
	return count > 0, nil
}

func (s *GormStore) Create(ctx context.Context, acct *Account) error {
	acct.Email = NormalizeEmail(acct.Email)
	if err := s.db.WithContext(ctx).Create(acct).Error; err != nil {
		if database.IsDuplicateError(err) {
			return apperrors.Conflict(msgTaken).WithCause(err)
		}
		return database.FromDatabase(err, "account")
	}
	return nil
}

func (s *GormStore) FindCredentials(ctx context.Context, email, username string) (*Account, error) {
	q := s.db.WithContext(ctx).Preload("Addresses", orderAddresses)
	if email != "" {
		q = q.Where("email = ?", NormalizeEmail(email))
	} else {
		q = q.Where("username = ?", username)
	}
	var acct Account
	if err := q.Take(&acct).Error; err != nil {
		return nil, database.FromDatabase(err, "account")
	}
	return &acct, nil
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*Account, error) {
	var acct Account
	err := s.db.WithContext(ctx).Select(publicColumns).
		Preload("Addresses", orderAddresses).
		Where("id = ?", id).Take(&acct).Error
	if err != nil {
		return nil, database.FromDatabase(err, "account")
	}
	return &acct, nil
}

func (s *GormStore) ListAddresses(ctx context.Context, accountID string) ([]Address, error) {
	addresses := []Address{}
	err := orderAddresses(s.db.WithContext(ctx).Where("account_id = ?", accountID)).
		Find(&addresses).Error
	if err != nil {
		return nil, database.FromDatabase(err, "address")
	}
	return addresses, nil
}

func (s *GormStore) AddAddress(ctx context.Context, accountID string, addr *Address) error {
	addr.AccountID = accountID
	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if addr.IsDefault {
			err := tx.Model(&Address{}).
				Where("account_id = ? AND is_default = ?", accountID, true).
				Update("is_default", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(addr).Error
	})
	if err != nil {
		return database.FromDatabase(err, "address")
	}
	return nil
}

func (s *GormStore) DeleteAddress(ctx context.Context, accountID, addressID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", addressID, accountID).
		Delete(&Address{})
	if res.Error != nil {
		return database.FromDatabase(res.Error, "address")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("address", addressID)
	}
	return nil
}

func orderAddresses(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
