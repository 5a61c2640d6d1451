// Package password provides one-way password hashing and verification.
//
// Two implementations satisfy Hasher:
//   - BcryptHasher: bcrypt, cost 10 by default
//   - Argon2Hasher: argon2id with PHC-style encoding
//
// Verify never returns an error: a mismatch and a malformed stored hash
// both report false, so callers cannot be crashed by a corrupt record.
//
//	hasher := password.NewBcryptHasher()
//	hash, err := hasher.Hash("Secret123!")
//	ok := hasher.Verify("Secret123!", hash)
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// MaxLength is the bcrypt input limit in bytes.
const MaxLength = 72

var (
	// ErrTooShort is returned by Policy.Check for passwords under the minimum length.
	ErrTooShort = errors.New("password: too short")
	// ErrTooLong is returned for passwords over MaxLength bytes.
	ErrTooLong = errors.New("password: exceeds 72 bytes")
)

// Hasher hashes passwords and verifies them against stored hashes.
type Hasher interface {
	// Hash returns a salted, encoded hash of the password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash
	// verifies as false.
	Verify(password, hash string) bool
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter. Out-of-range values are ignored.
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher creates a bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: DefaultBcryptCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxLength {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
