package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	// 32 random bytes, hex encoded.
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestNewOpaqueToken(t *testing.T) {
	a := NewOpaqueToken()
	b := NewOpaqueToken()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
