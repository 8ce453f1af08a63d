package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", hash)

	assert.True(t, hasher.Verify("Passw0rd", hash))
	assert.False(t, hasher.Verify("WrongPass1", hash))
	assert.False(t, hasher.Verify("Passw0rd", "not-a-hash"))
}

func TestPasswordHasher_HashesAreSalted(t *testing.T) {
	hasher := NewPasswordHasher()

	h1, err := hasher.Hash("Passw0rd")
	require.NoError(t, err)
	h2, err := hasher.Hash("Passw0rd")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, hasher.Verify("Passw0rd", h1))
	assert.True(t, hasher.Verify("Passw0rd", h2))
}
