package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// PasswordHasher hashes with a fixed cost and can burn an equivalent
// comparison when there is no stored hash to check against.
type PasswordHasher struct {
	cost  int
	once  sync.Once
	dummy string
}

// NewPasswordHasher returns a hasher using cost, or bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash hashes plain.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	return HashPassword(plain, h.cost)
}

// Compare verifies plain against hashed.
func (h *PasswordHasher) Compare(hashed, plain string) error {
	return ComparePassword(hashed, plain)
}

// CompareDummy spends the same work as a failed Compare.
func (h *PasswordHasher) CompareDummy(plain string) {
	h.once.Do(func() {
		h.dummy, _ = HashPassword("dummy-password-for-timing", h.cost)
	})
	_ = ComparePassword(h.dummy, plain)
}
