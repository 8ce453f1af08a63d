package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const refreshTokenBytes = 32

// NewRefreshToken returns a high-entropy opaque random string with no
// embedded claims (256 bits, hex encoded). The value is persisted on the
// user row it belongs to and rotated on every use.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewOpaqueToken returns a one-time token for email confirmation and
// password-reset flows.
func NewOpaqueToken() string {
	return uuid.NewString()
}
