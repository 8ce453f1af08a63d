package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// PasswordHasher hashes and verifies passwords with bcrypt. The adaptive
// cost factor and per-hash salt come from bcrypt itself.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the default cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcryptCost}
}

// Hash returns the bcrypt hash of the plaintext.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a plaintext against a stored hash.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
