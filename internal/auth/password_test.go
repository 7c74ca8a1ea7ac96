package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Success(t *testing.T) {
	hash, err := HashPassword("secure-password")

	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secure-password", hash)
}

func TestHashPassword_TooShort(t *testing.T) {
	hash, err := HashPassword("short")

	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Empty(t, hash)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("secure-password")
	require.NoError(t, err)
	hash2, err := HashPassword("secure-password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secure-password")
	require.NoError(t, err)

	assert.True(t, CheckPassword("secure-password", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
	assert.False(t, CheckPassword("secure-password", "not-a-hash"))
}
