package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret!", hash, "hash must not be the plaintext")

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "two hashes of one password must differ")
}
