package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// MaxPasswordBytes is the longest input bcrypt uses. Bytes past it are ignored.
const MaxPasswordBytes = 72

// PasswordHasher hashes passwords with a fixed bcrypt cost. Every hash gets
// its own random salt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher, clamping cost into bcrypt's valid range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost returns the work factor in use.
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash returns the bcrypt hash of the first MaxPasswordBytes of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	secret := []byte(password)
	if len(secret) > MaxPasswordBytes {
		secret = secret[:MaxPasswordBytes]
	}
	hash, err := bcrypt.GenerateFromPassword(secret, h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
